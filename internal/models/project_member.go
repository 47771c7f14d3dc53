package models

import "time"

type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleAdmin  MemberRole = "admin"
	RoleEditor MemberRole = "editor"
	RoleViewer MemberRole = "viewer"
)

func (r MemberRole) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// CanManageMembers reports whether the role may change roles or remove members.
func (r MemberRole) CanManageMembers() bool {
	return r == RoleOwner || r == RoleAdmin
}

// CanEdit reports whether the role may modify project content.
func (r MemberRole) CanEdit() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleEditor
}

// ProjectMember links a project to a registered user or to a bare invited email.
type ProjectMember struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	ProjectUUID string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_project_member_email" json:"project_uuid"`
	UserID      *uint64    `gorm:"index" json:"user_id"`
	MemberEmail string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_project_member_email" json:"member_email"`
	Role        MemberRole `gorm:"type:varchar(20);not null;default:'viewer'" json:"role"`
	AddedAt     time.Time  `json:"added_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
