package entity

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is a user's permission level on a workspace. Ownership is modeled by
// the Owner field on the workspace itself; RoleOwner is the artificial level
// reported for that user.
type Role int

const (
	RoleReader     Role = 1
	RoleWriter     Role = 2
	RoleMaintainer Role = 3
	RoleOwner      Role = 4
)

func (r Role) String() string {
	switch r {
	case RoleReader:
		return "reader"
	case RoleWriter:
		return "writer"
	case RoleMaintainer:
		return "maintainer"
	case RoleOwner:
		return "owner"
	}
	return "none"
}

type Workspace struct {
	gorm.Model
	ID     uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name   string    `gorm:"type:varchar(300);uniqueIndex" json:"name"`
	Public bool      `gorm:"type:boolean" json:"public"`
	// ArangoDBName is generated once at creation and never changes; the
	// backing database exists exactly as long as this record does.
	ArangoDBName string    `gorm:"type:varchar(34);uniqueIndex" json:"arango_db_name"`
	OwnerID      uuid.UUID `gorm:"type:uuid;not null" json:"owner_id"`
	Tables       []Table   `gorm:"foreignKey:WorkspaceID;constraint:OnDelete:CASCADE" json:"-"`
	Networks     []Network `gorm:"foreignKey:WorkspaceID;constraint:OnDelete:CASCADE" json:"-"`
}

func (w *Workspace) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.ArangoDBName == "" {
		w.ArangoDBName = NewArangoDBName()
	}
	return nil
}

// NewArangoDBName generates a backing database name. Arango database names
// must start with a letter.
func NewArangoDBName() string {
	return "w-" + strings.ReplaceAll(uuid.New().String(), "-", "")
}

type WorkspaceRole struct {
	gorm.Model
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_workspace_user" json:"workspace_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_workspace_user" json:"user_id"`
	Role        Role      `gorm:"type:smallint;not null" json:"role"`
}

func (r *WorkspaceRole) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
