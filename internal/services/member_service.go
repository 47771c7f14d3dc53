package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/utils"
	"gorm.io/gorm"
)

// MemberService handles project membership and invitations
type MemberService struct {
	projectRepo repository.ProjectRepository
	memberRepo  repository.MemberRepository
	userRepo    repository.UserRepository
	dispatcher  InvitationDispatcher
}

// NewMemberService creates a new MemberService
func NewMemberService(
	projectRepo repository.ProjectRepository,
	memberRepo repository.MemberRepository,
	userRepo repository.UserRepository,
	dispatcher InvitationDispatcher,
) *MemberService {
	return &MemberService{
		projectRepo: projectRepo,
		memberRepo:  memberRepo,
		userRepo:    userRepo,
		dispatcher:  dispatcher,
	}
}

// MemberList is the owner plus the stored member rows of a project.
type MemberList struct {
	Owner   models.User
	Members []models.ProjectMember
}

// BulkAddResult reports which emails were added and which already existed.
type BulkAddResult struct {
	Added   []models.ProjectMember
	Skipped []string
}

// ListMembers returns the project owner and member rows
func (s *MemberService) ListMembers(ctx context.Context, projectUUID string) (*MemberList, error) {
	project, err := s.findProject(ctx, projectUUID)
	if err != nil {
		return nil, err
	}

	members, err := s.memberRepo.ListByProject(ctx, projectUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch members: %w", err)
	}

	return &MemberList{Owner: project.Owner, Members: members}, nil
}

// AddMember adds one email to the project. A duplicate is a conflict
// regardless of the requested role.
func (s *MemberService) AddMember(ctx context.Context, access *ProjectAccess, inviter *models.User, input MemberInput) (*models.ProjectMember, error) {
	if !access.CanEdit() {
		return nil, ErrInsufficientRole
	}

	candidates, err := normalizeMemberInputs([]MemberInput{input})
	if err != nil {
		return nil, err
	}

	project, err := s.findProject(ctx, access.ProjectUUID)
	if err != nil {
		return nil, err
	}

	fresh, _, err := s.filterExisting(ctx, project, candidates)
	if err != nil {
		return nil, err
	}
	if len(fresh) == 0 {
		return nil, ErrDuplicateMember
	}

	added, err := s.insert(ctx, project, inviter, fresh)
	if err != nil {
		return nil, err
	}
	return &added[0], nil
}

// BulkAddMembers deduplicates the input, drops emails that are already
// members and inserts the rest in one batch.
func (s *MemberService) BulkAddMembers(ctx context.Context, access *ProjectAccess, inviter *models.User, inputs []MemberInput) (*BulkAddResult, error) {
	if !access.CanEdit() {
		return nil, ErrInsufficientRole
	}
	if len(inputs) == 0 {
		return nil, ErrNoMembersProvided
	}
	if len(inputs) > constants.MaxBulkMembers {
		return nil, ErrTooManyMembers
	}

	candidates, err := normalizeMemberInputs(inputs)
	if err != nil {
		return nil, err
	}

	project, err := s.findProject(ctx, access.ProjectUUID)
	if err != nil {
		return nil, err
	}

	fresh, skipped, err := s.filterExisting(ctx, project, candidates)
	if err != nil {
		return nil, err
	}
	if len(fresh) == 0 {
		return nil, ErrAllMembersExist
	}

	added, err := s.insert(ctx, project, inviter, fresh)
	if err != nil {
		return nil, err
	}
	return &BulkAddResult{Added: added, Skipped: skipped}, nil
}

// InviteMembers is the legacy invite form: many emails sharing one role.
func (s *MemberService) InviteMembers(ctx context.Context, access *ProjectAccess, inviter *models.User, emails []string, role models.MemberRole) (*BulkAddResult, error) {
	inputs := make([]MemberInput, len(emails))
	for i, email := range emails {
		inputs[i] = MemberInput{Email: email, Role: role}
	}
	return s.BulkAddMembers(ctx, access, inviter, inputs)
}

// UpdateMemberRole changes a member's role. Only the owner or an admin may do this.
func (s *MemberService) UpdateMemberRole(ctx context.Context, access *ProjectAccess, memberID uint64, role models.MemberRole) (*models.ProjectMember, error) {
	if !access.CanManageMembers() {
		return nil, ErrInsufficientRole
	}
	if !role.Valid() || role == models.RoleOwner {
		return nil, ErrInvalidRole
	}

	member, err := s.findMember(ctx, access.ProjectUUID, memberID)
	if err != nil {
		return nil, err
	}

	member.Role = role
	if err := s.memberRepo.UpdateRole(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update member role: %w", err)
	}
	return member, nil
}

// RemoveMember deletes a member row. Only the owner or an admin may do this.
func (s *MemberService) RemoveMember(ctx context.Context, access *ProjectAccess, memberID uint64) error {
	if !access.CanManageMembers() {
		return ErrInsufficientRole
	}

	member, err := s.findMember(ctx, access.ProjectUUID, memberID)
	if err != nil {
		return err
	}

	if err := s.memberRepo.Delete(ctx, member.ID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

// filterExisting splits candidates into new emails and emails that already
// belong to the project, the owner's included.
func (s *MemberService) filterExisting(ctx context.Context, project *models.Project, candidates []MemberInput) ([]MemberInput, []string, error) {
	emails := make([]string, len(candidates))
	for i, c := range candidates {
		emails[i] = c.Email
	}

	existing, err := s.memberRepo.ExistingEmails(ctx, project.UUID, emails)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check existing members: %w", err)
	}

	taken := make(map[string]struct{}, len(existing)+1)
	for _, e := range existing {
		taken[utils.NormalizeEmail(e)] = struct{}{}
	}
	if project.Owner.Email != "" {
		taken[utils.NormalizeEmail(project.Owner.Email)] = struct{}{}
	}

	skipped := make([]string, 0)
	for _, c := range candidates {
		if _, ok := taken[c.Email]; ok {
			skipped = append(skipped, c.Email)
		}
	}
	return withoutEmails(candidates, taken), skipped, nil
}

func (s *MemberService) insert(ctx context.Context, project *models.Project, inviter *models.User, candidates []MemberInput) ([]models.ProjectMember, error) {
	members, err := buildMemberRows(ctx, s.userRepo, candidates)
	if err != nil {
		return nil, err
	}
	for i := range members {
		members[i].ProjectUUID = project.UUID
	}

	if err := s.memberRepo.CreateBatch(ctx, members); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateMember
		}
		return nil, fmt.Errorf("failed to add members: %w", err)
	}

	dispatchInvitations(s.dispatcher, project, inviter, members)
	return members, nil
}

func (s *MemberService) findProject(ctx context.Context, projectUUID string) (*models.Project, error) {
	project, err := s.projectRepo.FindByUUID(ctx, projectUUID, "Owner")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

func (s *MemberService) findMember(ctx context.Context, projectUUID string, memberID uint64) (*models.ProjectMember, error) {
	member, err := s.memberRepo.FindByID(ctx, projectUUID, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	return member, nil
}
