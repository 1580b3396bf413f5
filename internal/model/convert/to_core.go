package convert

import (
	"encoding/json"
	"fmt"

	"github.com/partyvault/partyvault/internal/model"
	"github.com/partyvault/partyvault/pkg/core"
)

// RecordToCharacter converts a GORM model.ArchiveRecord back to a core.Character.
// An unreadable equipment column yields core.ErrMalformedRecord.
func RecordToCharacter(r model.ArchiveRecord) (core.Character, error) {
	c := core.Character{
		ClassID:  r.ClassID,
		Health:   r.Health,
		Mana:     r.Mana,
		Strength: r.Strength,
		Agility:  r.Agility,
		Wisdom:   r.Wisdom,
	}

	if len(r.Equipment) == 0 {
		return core.Character{}, fmt.Errorf("%w: record %d has no equipment list", core.ErrMalformedRecord, r.ID)
	}
	var equipment []int
	if err := json.Unmarshal(r.Equipment, &equipment); err != nil {
		return core.Character{}, fmt.Errorf("%w: record %d: %v", core.ErrMalformedRecord, r.ID, err)
	}
	if len(equipment) > 0 {
		c.Equipment = equipment
	}
	return c, nil
}

// RecordsToParty converts records, already ordered by position, to a party.
// One bad record fails the whole party.
func RecordsToParty(records []model.ArchiveRecord) (core.Party, error) {
	party := make(core.Party, 0, len(records))
	for _, r := range records {
		c, err := RecordToCharacter(r)
		if err != nil {
			return nil, err
		}
		party = append(party, c)
	}
	return party, nil
}
