package sim

import (
	"hash/fnv"
	"math/rand"
)

// RNGService provides the deterministic, seedable stream every stochastic
// producer in a run shares or derives from (spec §2.4). It is grounded on
// the per-subsystem RNG partitioning used by inference-sim's
// PartitionedRNG: one master seed plus a named subsystem yields a
// reproducible, independent *rand.Rand, so that adding a new stochastic
// consumer never perturbs the sequence another one draws.
type RNGService struct {
	seed       int64
	subsystems map[string]*rand.Rand
}

// NewRNGService creates an RNGService rooted at seed. Two RNGServices
// created with the same seed produce bit-identical streams for every
// subsystem name requested in the same order.
func NewRNGService(seed int64) *RNGService {
	return &RNGService{
		seed:       seed,
		subsystems: make(map[string]*rand.Rand),
	}
}

// Seed returns the master seed this service was created with.
func (s *RNGService) Seed() int64 { return s.seed }

// ForSubsystem returns the *rand.Rand for the named subsystem, creating and
// caching it on first use. The same name always returns the same instance.
func (s *RNGService) ForSubsystem(name string) *rand.Rand {
	if r, ok := s.subsystems[name]; ok {
		return r
	}

	derived := s.seed ^ fnv1a64(name)
	r := rand.New(rand.NewSource(derived))
	s.subsystems[name] = r

	return r
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int64(h.Sum64())
}
