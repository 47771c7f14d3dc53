package dto

import (
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/services"
)

// MemberDTO represents a project member row. User is nil for invited emails
// that do not belong to an account yet.
type MemberDTO struct {
	ID          uint64            `json:"id"`
	ProjectUUID string            `json:"project_uuid"`
	UserID      *uint64           `json:"user_id"`
	Email       string            `json:"email"`
	Role        models.MemberRole `json:"role"`
	Registered  bool              `json:"registered"`
	AddedAt     time.Time         `json:"added_at"`
	User        *UserSummaryDTO   `json:"user,omitempty"`
}

// MemberListResponse lists the owner separately from member rows
type MemberListResponse struct {
	Owner   UserSummaryDTO `json:"owner"`
	Members []MemberDTO    `json:"members"`
}

// BulkAddResponse reports added members and skipped duplicates
type BulkAddResponse struct {
	Added   []MemberDTO `json:"added"`
	Skipped []string    `json:"skipped"`
}

// ToMemberDTO converts a ProjectMember model to MemberDTO
func ToMemberDTO(member models.ProjectMember) MemberDTO {
	return MemberDTO{
		ID:          member.ID,
		ProjectUUID: member.ProjectUUID,
		UserID:      member.UserID,
		Email:       member.MemberEmail,
		Role:        member.Role,
		Registered:  member.UserID != nil,
		AddedAt:     member.AddedAt,
		User:        optionalUser(member.User),
	}
}

// ToMemberDTOs converts a slice of member rows
func ToMemberDTOs(members []models.ProjectMember) []MemberDTO {
	result := make([]MemberDTO, len(members))
	for i, m := range members {
		result[i] = ToMemberDTO(m)
	}
	return result
}

// ToMemberListResponse converts a MemberList
func ToMemberListResponse(list *services.MemberList) MemberListResponse {
	return MemberListResponse{
		Owner:   ToUserSummaryDTO(list.Owner),
		Members: ToMemberDTOs(list.Members),
	}
}

// ToBulkAddResponse converts a BulkAddResult
func ToBulkAddResponse(result *services.BulkAddResult) BulkAddResponse {
	return BulkAddResponse{
		Added:   ToMemberDTOs(result.Added),
		Skipped: result.Skipped,
	}
}
