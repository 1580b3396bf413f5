package model

import (
	"time"

	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Archive{},
	&ArchiveRecord{},
}

// Archive is one named party save. Name is the identity callers use.
type Archive struct {
	Name      string    `json:"name" gorm:"primaryKey;size:255"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (*Archive) TableName() string {
	return "archives"
}

// ArchiveRecord is one party member of an archive. Position keeps party order.
type ArchiveRecord struct {
	ID          uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	ArchiveName string         `json:"archiveName" gorm:"size:255;index:idx_archive_records_archive_position,priority:1"`
	Position    int            `json:"position" gorm:"index:idx_archive_records_archive_position,priority:2"`
	ClassID     int            `json:"classID"`
	Health      int            `json:"health"`
	Mana        int            `json:"mana"`
	Strength    int            `json:"strength"`
	Agility     int            `json:"agility"`
	Wisdom      int            `json:"wisdom"`
	Equipment   datatypes.JSON `json:"equipmentList"`
}

func (*ArchiveRecord) TableName() string {
	return "archive_records"
}
