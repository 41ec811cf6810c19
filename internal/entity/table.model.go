package entity

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Table struct {
	gorm.Model
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name        string    `gorm:"type:varchar(300);not null;uniqueIndex:idx_table_name_workspace" json:"name"`
	Edge        bool      `gorm:"type:boolean" json:"edge"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_table_name_workspace" json:"workspace_id"`

	Annotations []TableTypeAnnotation `gorm:"foreignKey:TableID;constraint:OnDelete:CASCADE" json:"-"`
}

func (t *Table) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableTypeAnnotation records the declared semantic type of one stored
// column. Annotations describe the document's stored shape, so key and edge
// endpoint columns appear here under their reserved field names.
type TableTypeAnnotation struct {
	gorm.Model
	ID      uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TableID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_annotation_column_table" json:"table_id"`
	Column  string    `gorm:"type:varchar(300);not null;uniqueIndex:idx_annotation_column_table" json:"column"`
	Type    string    `gorm:"type:varchar(30);not null" json:"type"`
}

func (a *TableTypeAnnotation) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
