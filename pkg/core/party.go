// pkg/core/party.go
package core

import "slices"

// Character is one party member as persisted in an archive.
type Character struct {
	ClassID  int
	Health   int
	Mana     int
	Strength int
	Agility  int
	Wisdom   int

	// Equipment is an ordered loadout of item ids. Duplicates are allowed
	// and order is significant.
	Equipment []int
}

// Clone returns a copy that shares no memory with c.
func (c Character) Clone() Character {
	out := c
	if c.Equipment != nil {
		out.Equipment = slices.Clone(c.Equipment)
	}
	return out
}

// Equal reports whether both characters hold the same stats and the same
// equipment in the same order. A nil and an empty loadout are equal.
func (c Character) Equal(o Character) bool {
	return c.ClassID == o.ClassID &&
		c.Health == o.Health &&
		c.Mana == o.Mana &&
		c.Strength == o.Strength &&
		c.Agility == o.Agility &&
		c.Wisdom == o.Wisdom &&
		slices.Equal(c.Equipment, o.Equipment)
}

// Party is the ordered sequence of characters that makes up an archive.
type Party []Character

// Clone deep copies the party.
func (p Party) Clone() Party {
	if p == nil {
		return nil
	}
	out := make(Party, len(p))
	for i, c := range p {
		out[i] = c.Clone()
	}
	return out
}

// Equal compares two parties member by member.
func (p Party) Equal(o Party) bool {
	return slices.EqualFunc(p, o, Character.Equal)
}

// Archive is a named party as held by a storage backend.
type Archive struct {
	Name  string
	Party Party
}
