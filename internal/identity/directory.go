// Package identity authenticates portal users against a corporate directory.
//
// The directory answers one question: do these credentials belong to a
// person, and are they a Kafka administrator? Providing accounts, profile
// storage, and sessions is left to the auth module.
package identity

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"kafkaportal/internal/platform/config"
	dErrors "kafkaportal/pkg/domain-errors"
)

// Identity is what the directory knows about an authenticated person.
type Identity struct {
	Username string
	Email    string
	IsAdmin  bool
}

// Directory verifies credentials. Implementations return CodeUnauthorized
// for bad credentials and CodeUnavailable when the backend cannot be reached.
type Directory interface {
	Authenticate(ctx context.Context, username, password string) (*Identity, error)
}

var errInvalidCredentials = dErrors.New(dErrors.CodeUnauthorized, "invalid username or password")

// MockDirectory accepts configured admin accounts with their password and
// any other non-empty credentials as a regular user.
type MockDirectory struct {
	admins      map[string][]byte
	emailDomain string
}

// NewMockDirectory hashes the admin passwords up front so plain text does not
// outlive configuration loading.
func NewMockDirectory(admins map[string]string, emailDomain string) (*MockDirectory, error) {
	hashed := make(map[string][]byte, len(admins))
	for user, pass := range admins {
		h, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.MinCost)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "hash mock admin password")
		}
		hashed[strings.ToLower(user)] = h
	}
	if emailDomain == "" {
		emailDomain = "company.com"
	}
	return &MockDirectory{admins: hashed, emailDomain: emailDomain}, nil
}

func (d *MockDirectory) Authenticate(_ context.Context, username, password string) (*Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errInvalidCredentials
	}
	ident := &Identity{Username: username, Email: username + "@" + d.emailDomain}

	if hash, ok := d.admins[strings.ToLower(username)]; ok {
		if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
			return nil, errInvalidCredentials
		}
		ident.IsAdmin = true
	}
	return ident, nil
}

// AdminsOnly restricts the directory to its configured admin accounts.
func (d *MockDirectory) AdminsOnly() Directory {
	return adminsOnly{d}
}

type adminsOnly struct{ *MockDirectory }

func (a adminsOnly) Authenticate(ctx context.Context, username, password string) (*Identity, error) {
	if _, ok := a.admins[strings.ToLower(strings.TrimSpace(username))]; !ok {
		return nil, errInvalidCredentials
	}
	return a.MockDirectory.Authenticate(ctx, username, password)
}

// FallbackDirectory consults secondary only when primary is unavailable.
// Rejected credentials on primary are final.
type FallbackDirectory struct {
	primary   Directory
	secondary Directory
}

func NewFallbackDirectory(primary, secondary Directory) *FallbackDirectory {
	return &FallbackDirectory{primary: primary, secondary: secondary}
}

func (d *FallbackDirectory) Authenticate(ctx context.Context, username, password string) (*Identity, error) {
	ident, err := d.primary.Authenticate(ctx, username, password)
	if err == nil || !dErrors.HasCode(err, dErrors.CodeUnavailable) {
		return ident, err
	}
	return d.secondary.Authenticate(ctx, username, password)
}

// FromConfig builds the directory selected by cfg.
func FromConfig(cfg config.DirectoryConfig) (Directory, error) {
	mock, err := NewMockDirectory(cfg.MockAdmins, cfg.MockEmailDomain)
	if err != nil {
		return nil, err
	}
	if cfg.Mode != config.DirectoryModeLDAP {
		return mock, nil
	}
	ldapDir := NewLDAPDirectory(LDAPConfig{
		URL:            cfg.LDAPURL,
		BaseDN:         cfg.LDAPBaseDN,
		UserDNTemplate: cfg.LDAPUserDNTemplate,
		AdminGroup:     cfg.LDAPAdminGroup,
		EmailDomain:    cfg.MockEmailDomain,
	})
	if !cfg.LDAPFallback {
		return ldapDir, nil
	}
	return NewFallbackDirectory(ldapDir, mock.AdminsOnly()), nil
}
