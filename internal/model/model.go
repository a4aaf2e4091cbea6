// Package model holds the gorm models backing the authoritative store.
package model

import (
	"gorm.io/gorm"

	"github.com/haierkeys/offline-note-sync-service/pkg/timex"
)

type Note struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Cid        string     `gorm:"column:cid;size:64;index"`
	Title      string     `gorm:"column:title;size:512"`
	Content    string     `gorm:"column:content"`
	IsFavorite bool       `gorm:"column:is_favorite"`
	IsDeleted  bool       `gorm:"column:is_deleted;index"`
	CreatedAt  timex.Time `gorm:"column:created_at"`
	UpdatedAt  timex.Time `gorm:"column:updated_at;index"`
}

func (Note) TableName() string {
	return "note"
}

type Tag struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Cid       string     `gorm:"column:cid;size:64;index"`
	Name      string     `gorm:"column:name;size:128"`
	Color     string     `gorm:"column:color;size:32"`
	CreatedAt timex.Time `gorm:"column:created_at"`
	UpdatedAt timex.Time `gorm:"column:updated_at"`
}

func (Tag) TableName() string {
	return "tag"
}

// NoteTag rows are unique per (note, tag) pair via the composite key.
type NoteTag struct {
	NoteID int64 `gorm:"column:note_id;primaryKey"`
	TagID  int64 `gorm:"column:tag_id;primaryKey"`
}

func (NoteTag) TableName() string {
	return "note_tag"
}

// AutoMigrate creates or upgrades all tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Note{}, &Tag{}, &NoteTag{})
}
