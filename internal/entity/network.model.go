package entity

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Network is a named graph combining one edge table with the node tables its
// endpoint references point at. The node-table set lives in the backing graph
// definition, not here.
type Network struct {
	gorm.Model
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name        string    `gorm:"type:varchar(300);not null;uniqueIndex:idx_network_name_workspace" json:"name"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_network_name_workspace" json:"workspace_id"`
}

func (n *Network) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
