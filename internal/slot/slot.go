// Package slot implements the eviction policy for a tiny, fixed set of
// working-buffer slots.
//
// With one slot every miss evicts slot 0. With two slots the policy is a
// two-state machine: the state is the most recently used slot, and a miss
// evicts the other one.
package slot

// Max is the largest supported number of slots.
const Max = 2

// Policy tracks the most recently used slot.
// The zero value is not usable; call New.
type Policy struct {
	n    int
	last int
}

// New returns a policy over n slots. n is clamped to [1, Max].
// The last slot starts as most recently used, so the first miss fills slot 0.
func New(n int) Policy {
	n = min(max(n, 1), Max)
	return Policy{n: n, last: n - 1}
}

// Len returns the number of slots.
func (p Policy) Len() int { return p.n }

// Last returns the most recently used slot.
func (p Policy) Last() int { return p.last }

// Victim returns the slot to reuse on a miss: the one not used last.
func (p Policy) Victim() int {
	return (p.last + 1) % p.n
}

// Touch records an access to slot i, hit or miss.
func (p *Policy) Touch(i int) {
	p.last = i
}
