package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/utils"
	"gorm.io/gorm"
)

// UserService handles user lookups, profile changes and just-in-time provisioning.
type UserService struct {
	userRepo repository.UserRepository
	verifier IdentityVerifier
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, verifier IdentityVerifier) *UserService {
	return &UserService{
		userRepo: userRepo,
		verifier: verifier,
	}
}

// Authenticate verifies a bearer token and maps it to an internal user,
// creating the user on first sight.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	subject, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.Provision(ctx, subject)
}

// Provision returns the user for an identity subject, creating it if needed.
// A new user takes over the email-only member rows invited under its email.
func (s *UserService) Provision(ctx context.Context, subject string) (*models.User, error) {
	user, err := s.userRepo.FindByClerkID(ctx, subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	identity, err := s.verifier.Profile(ctx, subject)
	if err != nil {
		return nil, err
	}

	user = &models.User{
		ClerkID:   subject,
		Name:      strings.TrimSpace(identity.Name),
		Email:     utils.NormalizeEmail(identity.Email),
		AvatarURL: identity.AvatarURL,
	}
	if user.Email == "" {
		user.Email = subject + "@users.invalid"
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		// Another request provisioned the same subject first.
		existing, findErr := s.userRepo.FindByClerkID(ctx, subject)
		if findErr != nil {
			return nil, ErrEmailTaken
		}
		return existing, nil
	}

	log.Printf("Provisioned user %d for subject %s", user.ID, subject)
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// GetUserByClerkID retrieves a user by identity provider subject.
func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*models.User, error) {
	user, err := s.userRepo.FindByClerkID(ctx, clerkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ListUsers returns a page of users.
func (s *UserService) ListUsers(ctx context.Context, params utils.PaginationParams) ([]models.User, int64, error) {
	users, total, err := s.userRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// SearchUsers finds users whose name or email contains the query.
func (s *UserService) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	if strings.TrimSpace(query) == "" {
		return []models.User{}, nil
	}
	users, err := s.userRepo.Search(ctx, query, constants.MaxUserSearchResults)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

// CreateUserInput holds the optional overrides of an explicit registration.
// ClerkID, when given, must name the verified subject.
type CreateUserInput struct {
	ClerkID   string
	Name      string
	AvatarURL *string
}

// CreateUser registers the user record of the verified subject. The email
// always comes from the identity provider profile.
func (s *UserService) CreateUser(ctx context.Context, subject string, input CreateUserInput) (*models.User, error) {
	if subject == "" {
		return nil, ErrInvalidCredential
	}
	if clerkID := strings.TrimSpace(input.ClerkID); clerkID != "" && clerkID != subject {
		return nil, ErrNotSelf
	}

	if _, err := s.userRepo.FindByClerkID(ctx, subject); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	identity, err := s.verifier.Profile(ctx, subject)
	if err != nil {
		return nil, err
	}
	email := utils.NormalizeEmail(identity.Email)
	if !utils.ValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	user := &models.User{
		ClerkID:   subject,
		Name:      strings.TrimSpace(input.Name),
		Email:     email,
		AvatarURL: input.AvatarURL,
	}
	if user.Name == "" {
		user.Name = strings.TrimSpace(identity.Name)
	}
	if user.AvatarURL == nil {
		user.AvatarURL = identity.AvatarURL
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		if _, findErr := s.userRepo.FindByClerkID(ctx, subject); findErr == nil {
			return nil, ErrUserExists
		}
		return nil, ErrEmailTaken
	}
	return user, nil
}

// UpdateUserInput holds the optional profile fields to change.
type UpdateUserInput struct {
	Name      *string
	Email     *string
	AvatarURL *string
}

// UpdateUser changes the actor's own profile.
func (s *UserService) UpdateUser(ctx context.Context, actorID, targetID uint64, input UpdateUserInput) (*models.User, error) {
	if actorID != targetID {
		return nil, ErrNotSelf
	}

	user, err := s.GetUser(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		user.Name = name
	}
	if input.Email != nil {
		email := utils.NormalizeEmail(*input.Email)
		if !utils.ValidEmail(email) {
			return nil, ErrInvalidEmail
		}
		user.Email = email
	}
	if input.AvatarURL != nil {
		user.AvatarURL = input.AvatarURL
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// DeleteUser removes the actor's own account and everything it owns.
func (s *UserService) DeleteUser(ctx context.Context, actorID, targetID uint64) error {
	if actorID != targetID {
		return ErrNotSelf
	}
	if _, err := s.GetUser(ctx, targetID); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, targetID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
