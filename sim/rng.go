package sim

import (
	"hash/fnv"
	"math/rand/v2"
)

// === Subsystem Constants ===

const (
	// SubsystemServiceTime feeds the service-time distribution.
	SubsystemServiceTime = "service_time"

	// SubsystemArrivalDelay feeds the inter-arrival distribution.
	SubsystemArrivalDelay = "arrival_delay"

	// SubsystemRouter is used by the random dispatch policies.
	SubsystemRouter = "router"

	// SubsystemTagging assigns priorities and destination cores at request creation.
	SubsystemTagging = "tagging"
)

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated random streams per subsystem.
//
// Derivation formula: each subsystem gets a PCG stream seeded with
// (masterSeed, masterSeed XOR fnv1a64(subsystemName)), so adding a consumer
// never shifts the draws another subsystem sees.
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	seed       int64
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a master seed.
func NewPartitionedRNG(seed int64) *PartitionedRNG {
	return &PartitionedRNG{
		seed:       seed,
		subsystems: make(map[string]*rand.Rand),
	}
}

// Source returns a fresh deterministic source for the named subsystem.
// Used to feed distribution samplers that own their own generator.
func (p *PartitionedRNG) Source(name string) rand.Source {
	return rand.NewPCG(uint64(p.seed), uint64(p.seed^fnv1a64(name)))
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(p.Source(name))
	p.subsystems[name] = rng
	return rng
}

// Seed returns the master seed.
func (p *PartitionedRNG) Seed() int64 {
	return p.seed
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
