// Package roster generates default parties for a fresh session.
package roster

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/partyvault/partyvault/internal/config"
	"github.com/partyvault/partyvault/pkg/core"
)

// Stat ranges for generated characters, inclusive.
const (
	MaxClassID     = 5
	MinHealth      = 50
	MaxHealth      = 150
	MaxMana        = 100
	MinStat        = 1
	MaxStat        = 20
	MinEquipment   = 1
	MaxEquipment   = 6
	MaxEquipmentID = 20
	DefaultSize    = 4
)

// Generator produces a fresh party.
type Generator interface {
	Generate() core.Party
}

// Random generates parties from a seeded PRNG.
type Random struct {
	mu   sync.Mutex
	size int
	rng  *rand.Rand
}

// NewRandom builds a generator for size members. A zero seed uses the clock;
// any other seed yields the same sequence of parties every run.
func NewRandom(size int, seed int64) *Random {
	if size <= 0 {
		size = DefaultSize
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Random{
		size: size,
		rng:  rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1)),
	}
}

// FromConfig builds a generator from the roster settings.
func FromConfig(cfg config.RosterConfig) *Random {
	return NewRandom(cfg.Size, cfg.Seed)
}

// Size returns the number of members per generated party.
func (r *Random) Size() int {
	return r.size
}

// Generate returns a new party.
func (r *Random) Generate() core.Party {
	r.mu.Lock()
	defer r.mu.Unlock()

	party := make(core.Party, r.size)
	for i := range party {
		party[i] = r.character()
	}
	return party
}

func (r *Random) between(lo, hi int) int {
	return lo + r.rng.IntN(hi-lo+1)
}

func (r *Random) character() core.Character {
	c := core.Character{
		ClassID:  r.between(0, MaxClassID),
		Health:   r.between(MinHealth, MaxHealth),
		Mana:     r.between(0, MaxMana),
		Strength: r.between(MinStat, MaxStat),
		Agility:  r.between(MinStat, MaxStat),
		Wisdom:   r.between(MinStat, MaxStat),
	}
	c.Equipment = make([]int, r.between(MinEquipment, MaxEquipment))
	for i := range c.Equipment {
		c.Equipment[i] = r.between(0, MaxEquipmentID)
	}
	return c
}

// Fixed always returns a copy of the same party. Useful where a predictable
// default is wanted.
type Fixed core.Party

// Generate returns a deep copy of the fixed party.
func (f Fixed) Generate() core.Party {
	return core.Party(f).Clone()
}
