// Package codec converts a single party character to and from its one-line
// serialized form. Archives are stored as one encoded line per character.
package codec

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/partyvault/partyvault/pkg/core"
)

// wireCharacter is the on-disk shape. Pointer fields let Decode tell a
// missing field apart from a zero value.
type wireCharacter struct {
	ClassID       *int   `json:"classID"`
	Health        *int   `json:"health"`
	Mana          *int   `json:"mana"`
	Strength      *int   `json:"strength"`
	Agility       *int   `json:"agility"`
	Wisdom        *int   `json:"wisdom"`
	EquipmentList *[]int `json:"equipmentList"`
}

// Encode serializes c as a single line without a trailing newline.
func Encode(c core.Character) (string, error) {
	// the loadout is always written as a dense array, never null
	equipment := make([]int, len(c.Equipment))
	copy(equipment, c.Equipment)

	w := wireCharacter{
		ClassID:       &c.ClassID,
		Health:        &c.Health,
		Mana:          &c.Mana,
		Strength:      &c.Strength,
		Agility:       &c.Agility,
		Wisdom:        &c.Wisdom,
		EquipmentList: &equipment,
	}
	b, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("encode character: %w", err)
	}
	return string(b), nil
}

// Decode parses one line produced by Encode. Any missing field, wrong type or
// trailing garbage yields an error wrapping core.ErrMalformedRecord. An empty
// loadout decodes as a nil slice.
func Decode(line string) (core.Character, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return core.Character{}, fmt.Errorf("%w: empty line", core.ErrMalformedRecord)
	}

	var w wireCharacter
	if err := json.Unmarshal([]byte(line), &w); err != nil {
		return core.Character{}, fmt.Errorf("%w: %v", core.ErrMalformedRecord, err)
	}

	if missing := w.missing(); len(missing) > 0 {
		return core.Character{}, fmt.Errorf("%w: missing %s", core.ErrMalformedRecord, strings.Join(missing, ", "))
	}

	c := core.Character{
		ClassID:  *w.ClassID,
		Health:   *w.Health,
		Mana:     *w.Mana,
		Strength: *w.Strength,
		Agility:  *w.Agility,
		Wisdom:   *w.Wisdom,
	}
	if len(*w.EquipmentList) > 0 {
		c.Equipment = slices.Clone(*w.EquipmentList)
	}
	return c, nil
}

func (w wireCharacter) missing() []string {
	var out []string
	fields := []struct {
		name string
		set  bool
	}{
		{"classID", w.ClassID != nil},
		{"health", w.Health != nil},
		{"mana", w.Mana != nil},
		{"strength", w.Strength != nil},
		{"agility", w.Agility != nil},
		{"wisdom", w.Wisdom != nil},
		{"equipmentList", w.EquipmentList != nil},
	}
	for _, f := range fields {
		if !f.set {
			out = append(out, f.name)
		}
	}
	return out
}

// EncodeParty encodes every member in order. It stops at the first failure.
func EncodeParty(p core.Party) ([]string, error) {
	lines := make([]string, 0, len(p))
	for i, c := range p {
		line, err := Encode(c)
		if err != nil {
			return nil, fmt.Errorf("character %d: %w", i, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// DecodeParty decodes all lines or none: the first bad line fails the whole party.
func DecodeParty(lines []string) (core.Party, error) {
	party := make(core.Party, 0, len(lines))
	for i, line := range lines {
		c, err := Decode(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		party = append(party, c)
	}
	return party, nil
}
