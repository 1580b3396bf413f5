// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"

	"github.com/partyvault/partyvault/internal/model"
	"github.com/partyvault/partyvault/pkg/core"
	"gorm.io/datatypes"
)

// equipmentToJSON converts a loadout to datatypes.JSON for DB storage.
func equipmentToJSON(equipment []int) datatypes.JSON {
	if len(equipment) == 0 {
		return datatypes.JSON("[]")
	}
	data, _ := json.Marshal(equipment)
	return datatypes.JSON(data)
}

// CharacterToRecord converts a core.Character to a GORM model.ArchiveRecord
// at the given party position.
func CharacterToRecord(archive string, position int, c core.Character) model.ArchiveRecord {
	return model.ArchiveRecord{
		ArchiveName: archive,
		Position:    position,
		ClassID:     c.ClassID,
		Health:      c.Health,
		Mana:        c.Mana,
		Strength:    c.Strength,
		Agility:     c.Agility,
		Wisdom:      c.Wisdom,
		Equipment:   equipmentToJSON(c.Equipment),
	}
}

// PartyToRecords converts every member in order.
func PartyToRecords(archive string, p core.Party) []model.ArchiveRecord {
	records := make([]model.ArchiveRecord, 0, len(p))
	for i, c := range p {
		records = append(records, CharacterToRecord(archive, i, c))
	}
	return records
}
