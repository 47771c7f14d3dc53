package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/notify"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/utils"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// InvitationDispatcher sends invitation emails without blocking the caller.
type InvitationDispatcher interface {
	DispatchInvitations(invitations []notify.Invitation)
}

// ProjectService handles project business logic
type ProjectService struct {
	projectRepo repository.ProjectRepository
	memberRepo  repository.MemberRepository
	userRepo    repository.UserRepository
	dispatcher  InvitationDispatcher
}

// NewProjectService creates a new ProjectService
func NewProjectService(
	projectRepo repository.ProjectRepository,
	memberRepo repository.MemberRepository,
	userRepo repository.UserRepository,
	dispatcher InvitationDispatcher,
) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		memberRepo:  memberRepo,
		userRepo:    userRepo,
		dispatcher:  dispatcher,
	}
}

// ProjectWithRole is a visible project together with the caller's role in it.
type ProjectWithRole struct {
	models.Project
	Role    models.MemberRole
	IsOwner bool
}

// MemberInput is one requested membership.
type MemberInput struct {
	Email string
	Role  models.MemberRole
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	Name        string
	Description string
	Status      models.ProjectStatus
	Priority    models.Priority
	StartDate   *time.Time
	EndDate     *time.Time
	Members     []MemberInput
}

// UpdateProjectInput represents a partial project update
type UpdateProjectInput struct {
	Name           *string
	Description    *string
	Status         *models.ProjectStatus
	Priority       *models.Priority
	StartDate      *time.Time
	EndDate        *time.Time
	ClearStartDate bool
	ClearEndDate   bool
}

// ListProjects returns every project visible to the user with the user's role.
func (s *ProjectService) ListProjects(ctx context.Context, user *models.User) ([]ProjectWithRole, error) {
	visible, err := loadVisibleProjects(ctx, s.projectRepo, user)
	if err != nil {
		return nil, err
	}

	merged := MergeProjects(visible.Owned, visible.Member)
	if len(merged) == 0 {
		return []ProjectWithRole{}, nil
	}

	owned := make(map[string]struct{}, len(visible.Owned))
	for _, p := range visible.Owned {
		owned[p.UUID] = struct{}{}
	}
	var memberUUIDs []string
	for _, p := range merged {
		if _, ok := owned[p.UUID]; !ok {
			memberUUIDs = append(memberUUIDs, p.UUID)
		}
	}

	var (
		projects []models.Project
		rows     []models.ProjectMember
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if projects, err = s.projectRepo.ListByUUIDs(gctx, ProjectUUIDs(merged), "Owner"); err != nil {
			return fmt.Errorf("failed to fetch projects: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if rows, err = s.memberRepo.ListByProjects(gctx, memberUUIDs); err != nil {
			return fmt.Errorf("failed to fetch memberships: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	email := utils.NormalizeEmail(user.Email)
	roles := make(map[string]models.MemberRole, len(rows))
	for _, m := range rows {
		if (m.UserID != nil && *m.UserID == user.ID) || utils.NormalizeEmail(m.MemberEmail) == email {
			roles[m.ProjectUUID] = m.Role
		}
	}

	result := make([]ProjectWithRole, 0, len(projects))
	for _, p := range projects {
		entry := ProjectWithRole{Project: p}
		if p.OwnerID == user.ID {
			entry.IsOwner = true
			entry.Role = models.RoleOwner
		} else {
			entry.Role = roles[p.UUID]
		}
		result = append(result, entry)
	}
	return result, nil
}

// CreateProject creates a project owned by the user together with its initial
// members. Invitations for unregistered emails are sent after the commit.
func (s *ProjectService) CreateProject(ctx context.Context, owner *models.User, input CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrProjectNameRequired
	}

	if input.Status == "" {
		input.Status = models.ProjectStatusOnTrack
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}
	if err := validateDateRange(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	candidates, err := normalizeMemberInputs(input.Members)
	if err != nil {
		return nil, err
	}
	// The owner is implicitly a member and never gets a row.
	candidates = withoutEmails(candidates, map[string]struct{}{utils.NormalizeEmail(owner.Email): {}})

	members, err := buildMemberRows(ctx, s.userRepo, candidates)
	if err != nil {
		return nil, err
	}

	project := &models.Project{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Status:      input.Status,
		Priority:    input.Priority,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		OwnerID:     owner.ID,
	}

	if err := s.projectRepo.CreateWithMembers(ctx, project, members); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateMember
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	dispatchInvitations(s.dispatcher, project, owner, members)

	return s.GetProject(ctx, project.UUID)
}

// GetProject returns a project with its owner, members and tasks
func (s *ProjectService) GetProject(ctx context.Context, projectUUID string) (*models.Project, error) {
	project, err := s.projectRepo.FindByUUID(ctx, projectUUID, "Owner", "Members", "Members.User", "Tasks")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// UpdateProject applies a partial update. Owners, admins and editors may edit.
func (s *ProjectService) UpdateProject(ctx context.Context, access *ProjectAccess, input UpdateProjectInput) (*models.Project, error) {
	if !access.CanEdit() {
		return nil, ErrInsufficientRole
	}

	project, err := s.projectRepo.FindByUUID(ctx, access.ProjectUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrProjectNameRequired
		}
		project.Name = name
	}
	if input.Description != nil {
		project.Description = strings.TrimSpace(*input.Description)
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		project.Status = *input.Status
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		project.Priority = *input.Priority
	}
	if input.ClearStartDate {
		project.StartDate = nil
	} else if input.StartDate != nil {
		project.StartDate = input.StartDate
	}
	if input.ClearEndDate {
		project.EndDate = nil
	} else if input.EndDate != nil {
		project.EndDate = input.EndDate
	}
	if err := validateDateRange(project.StartDate, project.EndDate); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return s.GetProject(ctx, project.UUID)
}

// DeleteProjects deletes one or more projects owned by the user and returns
// how many were removed. The batch is
// all-or-nothing: an unknown UUID or a project owned by someone else rejects
// the whole request before anything is removed.
func (s *ProjectService) DeleteProjects(ctx context.Context, userID uint64, projectUUIDs []string) (int, error) {
	uuids := uniqueStrings(projectUUIDs)
	if len(uuids) == 0 {
		return 0, ErrNoProjectIDsProvided
	}
	if len(uuids) > constants.MaxBulkProjectDelete {
		return 0, ErrTooManyProjects
	}

	projects, err := s.projectRepo.ListByUUIDs(ctx, uuids)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch projects: %w", err)
	}
	if len(projects) != len(uuids) {
		return 0, ErrProjectNotFound
	}
	for _, p := range projects {
		if p.OwnerID != userID {
			return 0, ErrNotProjectOwner
		}
	}

	if err := s.projectRepo.DeleteByUUIDs(ctx, uuids); err != nil {
		return 0, fmt.Errorf("failed to delete projects: %w", err)
	}
	return len(uuids), nil
}

func validateDateRange(start, end *time.Time) error {
	if start != nil && end != nil && utils.StartOfDay(end.UTC()).Before(utils.StartOfDay(start.UTC())) {
		return ErrInvalidDateRange
	}
	return nil
}

// normalizeMemberInputs lower-cases and deduplicates emails, keeping the first
// requested role for each, and validates every entry.
func normalizeMemberInputs(inputs []MemberInput) ([]MemberInput, error) {
	seen := make(map[string]struct{}, len(inputs))
	result := make([]MemberInput, 0, len(inputs))

	for _, in := range inputs {
		email := utils.NormalizeEmail(in.Email)
		if !utils.ValidEmail(email) {
			return nil, ErrInvalidEmail
		}
		role := in.Role
		if role == "" {
			role = models.RoleViewer
		}
		if !role.Valid() || role == models.RoleOwner {
			return nil, ErrInvalidRole
		}
		if _, exists := seen[email]; exists {
			continue
		}
		seen[email] = struct{}{}
		result = append(result, MemberInput{Email: email, Role: role})
	}
	return result, nil
}

func withoutEmails(inputs []MemberInput, exclude map[string]struct{}) []MemberInput {
	result := make([]MemberInput, 0, len(inputs))
	for _, in := range inputs {
		if _, skip := exclude[in.Email]; skip {
			continue
		}
		result = append(result, in)
	}
	return result
}

// buildMemberRows resolves candidate emails to registered users in one query.
func buildMemberRows(ctx context.Context, userRepo repository.UserRepository, candidates []MemberInput) ([]models.ProjectMember, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	emails := make([]string, len(candidates))
	for i, c := range candidates {
		emails[i] = c.Email
	}
	users, err := userRepo.FindByEmails(ctx, emails)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve member emails: %w", err)
	}
	byEmail := make(map[string]models.User, len(users))
	for _, u := range users {
		byEmail[utils.NormalizeEmail(u.Email)] = u
	}

	now := time.Now()
	members := make([]models.ProjectMember, 0, len(candidates))
	for _, c := range candidates {
		member := models.ProjectMember{
			MemberEmail: c.Email,
			Role:        c.Role,
			AddedAt:     now,
		}
		if u, ok := byEmail[c.Email]; ok {
			u := u
			member.UserID = &u.ID
			member.User = &u
		}
		members = append(members, member)
	}
	return members, nil
}

// dispatchInvitations emails the members that have no account yet.
func dispatchInvitations(dispatcher InvitationDispatcher, project *models.Project, inviter *models.User, members []models.ProjectMember) {
	if dispatcher == nil {
		return
	}

	var invitations []notify.Invitation
	for _, m := range members {
		if m.UserID != nil {
			continue
		}
		invitations = append(invitations, notify.Invitation{
			Email:       m.MemberEmail,
			ProjectName: project.Name,
			ProjectUUID: project.UUID,
			InviterName: inviter.Name,
			Role:        string(m.Role),
		})
	}
	dispatcher.DispatchInvitations(invitations)
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
