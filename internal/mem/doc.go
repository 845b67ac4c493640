// Package mem provides memory allocation utilities.
//
// # Aligned Allocation
//
// Working buffers are allocated on 64-byte boundaries so that a block's
// first value starts a cache line.
package mem
