// Package conv provides checked integer arithmetic for block geometry.
//
// Flat indices are int64 while slices are indexed by int; block counts
// multiplied by per-block sizes can overflow. These helpers report such
// cases as errors so that constructors can reject a geometry before
// allocating anything.
//
// For arithmetic that is provably safe (loop indices, bounded offsets),
// use direct expressions instead.
package conv
