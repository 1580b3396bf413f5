package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/partyvault/partyvault/internal/model"
	"github.com/partyvault/partyvault/pkg/core"
)

func TestCharacterToRecord(t *testing.T) {
	c := core.Character{ClassID: 2, Health: 90, Mana: 10, Strength: 3, Agility: 4, Wisdom: 5, Equipment: []int{7, 7, 1}}

	r := CharacterToRecord("Hero", 3, c)

	assert.Equal(t, "Hero", r.ArchiveName)
	assert.Equal(t, 3, r.Position)
	assert.Equal(t, 2, r.ClassID)
	assert.Equal(t, 90, r.Health)
	assert.Equal(t, 10, r.Mana)
	assert.Equal(t, 3, r.Strength)
	assert.Equal(t, 4, r.Agility)
	assert.Equal(t, 5, r.Wisdom)
	assert.JSONEq(t, `[7,7,1]`, string(r.Equipment))
}

func TestCharacterToRecord_EmptyEquipment(t *testing.T) {
	r := CharacterToRecord("Hero", 0, core.Character{})
	assert.Equal(t, datatypes.JSON("[]"), r.Equipment)
}

func TestRecordToCharacter_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   core.Character
	}{
		{"with equipment", core.Character{ClassID: 1, Health: 100, Equipment: []int{3, 1, 2}}},
		{"without equipment", core.Character{ClassID: 5, Wisdom: 20}},
		{"negative values", core.Character{Health: -5, Mana: -1, Equipment: []int{-1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RecordToCharacter(CharacterToRecord("x", 0, tt.in))
			require.NoError(t, err)
			assert.True(t, tt.in.Equal(got))
		})
	}
}

func TestRecordToCharacter_Malformed(t *testing.T) {
	tests := []struct {
		name      string
		equipment datatypes.JSON
	}{
		{"missing", nil},
		{"not json", datatypes.JSON("oops")},
		{"wrong type", datatypes.JSON(`["a"]`)},
		{"object", datatypes.JSON(`{"a":1}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RecordToCharacter(model.ArchiveRecord{Equipment: tt.equipment})
			assert.ErrorIs(t, err, core.ErrMalformedRecord)
		})
	}
}

func TestRecordsToParty_PreservesOrder(t *testing.T) {
	party := core.Party{{ClassID: 3}, {ClassID: 1}, {ClassID: 2}}

	got, err := RecordsToParty(PartyToRecords("Hero", party))
	require.NoError(t, err)
	assert.True(t, party.Equal(got))
}

func TestRecordsToParty_AllOrNothing(t *testing.T) {
	records := PartyToRecords("Hero", core.Party{{ClassID: 1}, {ClassID: 2}})
	records[1].Equipment = datatypes.JSON("{")

	got, err := RecordsToParty(records)
	assert.ErrorIs(t, err, core.ErrMalformedRecord)
	assert.Nil(t, got)
}
