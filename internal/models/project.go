package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectStatusOnTrack   ProjectStatus = "On track"
	ProjectStatusOffTrack  ProjectStatus = "Off track"
	ProjectStatusAtRisk    ProjectStatus = "At risk"
	ProjectStatusCompleted ProjectStatus = "Completed"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusOnTrack, ProjectStatusOffTrack, ProjectStatusAtRisk, ProjectStatusCompleted:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Project is addressed externally by UUID; ID is kept for legacy joins.
type Project struct {
	ID          uint64        `gorm:"primarykey" json:"id"`
	UUID        string        `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	Name        string        `gorm:"type:varchar(255);not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	Status      ProjectStatus `gorm:"type:varchar(20);not null;default:'On track'" json:"status"`
	Priority    Priority      `gorm:"type:varchar(20);not null;default:'Medium'" json:"priority"`
	StartDate   *time.Time    `json:"start_date"`
	EndDate     *time.Time    `json:"end_date"`
	OwnerID     uint64        `gorm:"not null;index" json:"owner_id"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	// Relations
	Owner   User            `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Members []ProjectMember `gorm:"foreignKey:ProjectUUID;references:UUID" json:"members,omitempty"`
	Tasks   []Task          `gorm:"foreignKey:ProjectUUID;references:UUID" json:"tasks,omitempty"`
}

// BeforeCreate assigns the external identifier.
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.NewString()
	}
	return nil
}
