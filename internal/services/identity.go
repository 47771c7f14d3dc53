package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/jwt"
	clerkuser "github.com/clerk/clerk-sdk-go/v2/user"
)

// Identity is the profile the identity provider holds for a subject.
type Identity struct {
	Subject   string
	Email     string
	Name      string
	AvatarURL *string
}

// IdentityVerifier validates bearer credentials issued by the external identity provider.
type IdentityVerifier interface {
	// Verify returns the stable subject identifier of a valid token
	Verify(ctx context.Context, token string) (string, error)

	// Profile fetches the subject's profile, used on first sight
	Profile(ctx context.Context, subject string) (*Identity, error)
}

// ClerkVerifier verifies Clerk session tokens.
type ClerkVerifier struct{}

// NewClerkVerifier configures the Clerk SDK with the backend secret key.
func NewClerkVerifier(secretKey string) *ClerkVerifier {
	clerk.SetKey(secretKey)
	return &ClerkVerifier{}
}

func (v *ClerkVerifier) Verify(ctx context.Context, token string) (string, error) {
	claims, err := jwt.Verify(ctx, &jwt.VerifyParams{Token: token})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if claims.Subject == "" {
		return "", ErrInvalidCredential
	}
	return claims.Subject, nil
}

func (v *ClerkVerifier) Profile(ctx context.Context, subject string) (*Identity, error) {
	usr, err := clerkuser.Get(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIdentityUnavailable, err)
	}

	identity := &Identity{
		Subject:   subject,
		AvatarURL: usr.ImageURL,
	}

	for _, addr := range usr.EmailAddresses {
		if addr == nil {
			continue
		}
		if identity.Email == "" || (usr.PrimaryEmailAddressID != nil && addr.ID == *usr.PrimaryEmailAddressID) {
			identity.Email = addr.EmailAddress
		}
	}

	var parts []string
	if usr.FirstName != nil && *usr.FirstName != "" {
		parts = append(parts, *usr.FirstName)
	}
	if usr.LastName != nil && *usr.LastName != "" {
		parts = append(parts, *usr.LastName)
	}
	identity.Name = strings.Join(parts, " ")
	if identity.Name == "" && usr.Username != nil {
		identity.Name = *usr.Username
	}

	return identity, nil
}
