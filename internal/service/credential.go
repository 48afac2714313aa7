// Package service implements the credential service: registration with
// exhaustive validation and authentication with a deliberately generic
// failure mode so the login form never reveals whether the username or
// the password was wrong.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/go-blog/internal/model"
	"github.com/iliyamo/go-blog/internal/repository"
	"github.com/iliyamo/go-blog/internal/utils"
)

// ErrInvalidCredentials is the single generic authentication failure.
// It carries no field attribution to avoid username enumeration.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Validation rule bounds.
const (
	minPasswordLen = 6
	minUsernameLen = 3
)

// CredentialService registers and authenticates users. It owns password
// hashing; repositories only ever see the bcrypt hash.
type CredentialService struct {
	Users *repository.UserRepo
	Cost  int // bcrypt cost from config
}

func NewCredentialService(users *repository.UserRepo, cost int) *CredentialService {
	return &CredentialService{Users: users, Cost: cost}
}

// Register validates all rules, collecting every violation into one
// ValidationError so the form can re-render the complete list, then
// persists the user with a salted bcrypt hash. The availability check
// is one existence query against both the username and email columns;
// the unique keys in the schema remain the source of truth, so a lost
// race against a concurrent registration surfaces as the same conflict
// message rather than a duplicate row.
func (s *CredentialService) Register(ctx context.Context, username, email, password, confirmPassword string) (uint64, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	var problems []string
	if username == "" || email == "" || password == "" || confirmPassword == "" {
		problems = append(problems, "All fields are required")
	}
	if password != confirmPassword {
		problems = append(problems, "Passwords do not match")
	}
	if len(password) < minPasswordLen {
		problems = append(problems, "Password must be at least 6 characters long")
	}
	if len(username) < minUsernameLen {
		problems = append(problems, "Username must be at least 3 characters long")
	}

	taken, err := s.Users.Exists(ctx, username, email)
	if err != nil {
		return 0, err
	}
	if taken {
		problems = append(problems, "Username or email already exists")
	}

	if len(problems) > 0 {
		return 0, &repository.ValidationError{Problems: problems}
	}

	hash, err := utils.HashPassword(password, s.Cost)
	if err != nil {
		return 0, err
	}
	id, err := s.Users.Create(ctx, username, email, hash)
	if errors.Is(err, repository.ErrUserExists) {
		// Concurrent registration won the unique key between the
		// existence check and the insert.
		return 0, &repository.ValidationError{Problems: []string{"Username or email already exists"}}
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Authenticate verifies the password for the user matching the
// identifier, which may be a username or an email address. Every
// failure path returns the same ErrInvalidCredentials; bcrypt's
// comparison is constant-time over the hash.
func (s *CredentialService) Authenticate(ctx context.Context, identifier, password string) (*model.Identity, error) {
	u, err := s.Users.GetByUsernameOrEmail(ctx, identifier)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return &model.Identity{UserID: u.ID, Username: u.Username}, nil
}
