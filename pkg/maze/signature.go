package maze

import (
	"encoding/binary"
	"math/rand/v2"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// Signature identifies one probabilistic link: the room it leads to together
// with every context pending delivery there when the link was taken.
// Two signatures with the same ids denote the same underlying link.
type Signature struct {
	IDs         []int
	Probability float64
	Success     bool
	Resolved    bool

	// Consumed records that the goals of the room were already reported
	// under this signature.
	Consumed bool
}

// NewSignature returns an unresolved signature for the given component ids.
// The ids are copied and sorted; the probability is clamped to [0,1].
func NewSignature(ids []int, probability float64) *Signature {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return &Signature{
		IDs:         sorted,
		Probability: min(max(probability, 0), 1),
	}
}

// Draw derives a pass/fail outcome for trialKey without touching the
// signature. The same ids, probability and key always yield the same result.
func (s *Signature) Draw(trialKey int64) bool {
	d := xxhash.New()
	buf := make([]byte, 0, 8)
	for _, id := range s.IDs {
		buf = binary.LittleEndian.AppendUint64(buf[:0], uint64(id))
		_, _ = d.Write(buf)
	}
	buf = binary.LittleEndian.AppendUint64(buf[:0], uint64(trialKey))
	_, _ = d.Write(buf)

	seed := d.Sum64()
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return r.Float64() < s.Probability
}

// Outcome returns the committed outcome once resolved, otherwise Draw(trialKey).
func (s *Signature) Outcome(trialKey int64) bool {
	if s.Resolved {
		return s.Success
	}
	return s.Draw(trialKey)
}

// Resolve fixes the outcome of the link.
func (s *Signature) Resolve(success bool) {
	s.Success = success
	s.Resolved = true
}

// Match reports whether both signatures denote the same link.
func (s *Signature) Match(other *Signature) bool {
	if other == nil {
		return false
	}
	return slices.Equal(s.IDs, other.IDs)
}

// Clone returns an independent copy.
func (s *Signature) Clone() *Signature {
	c := *s
	c.IDs = slices.Clone(s.IDs)
	return &c
}
