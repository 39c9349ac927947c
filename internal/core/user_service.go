package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// UserService manages accounts: registration, credential checks, and profiles.
type UserService interface {
	// Register creates a new account with a bcrypt-hashed password.
	Register(ctx context.Context, input RegisterInput) (*User, error)
	// Authenticate verifies email+password and returns the user on success.
	// Unknown email and wrong password produce the same error.
	Authenticate(ctx context.Context, email, password string) (*User, error)
	GetByID(ctx context.Context, userID int) (*User, error)
	// UpdateProfile changes the display name and, when NewPassword is set,
	// the password (after verifying CurrentPassword).
	UpdateProfile(ctx context.Context, userID int, input ProfileUpdateInput) (*User, error)
}

// RegisterInput is the payload for Register.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

// ProfileUpdateInput is the payload for UpdateProfile.
type ProfileUpdateInput struct {
	DisplayName     string
	CurrentPassword string
	NewPassword     string
}

// ErrInvalidCredentials is returned by Authenticate for an unknown email or
// a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

type userService struct {
	pool *pgxpool.Pool
}

// NewUserService constructs a UserService backed by PostgreSQL.
func NewUserService(pool *pgxpool.Pool) UserService {
	return &userService{pool: pool}
}

func (s *userService) Register(ctx context.Context, input RegisterInput) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, validationf("email is required")
	}
	if len(input.Password) < 8 {
		return nil, validationf("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{}
	err = s.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, display_name)
		VALUES ($1, $2, $3)
		RETURNING id, email, password_hash, display_name, role, created_at
	`, email, string(hash), input.DisplayName).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflictf("email %s is already registered", email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u := &User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, display_name, role, created_at
		FROM users
		WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *userService) GetByID(ctx context.Context, userID int) (*User, error) {
	u := &User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, display_name, role, created_at
		FROM users
		WHERE id = $1
	`, userID).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("user %d not found", userID)
		}
		return nil, fmt.Errorf("failed to fetch user %d: %w", userID, err)
	}
	return u, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID int, input ProfileUpdateInput) (*User, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	newHash := u.PasswordHash
	if input.NewPassword != "" {
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.CurrentPassword)) != nil {
			return nil, validationf("current password is incorrect")
		}
		if len(input.NewPassword) < 8 {
			return nil, validationf("password must be at least 8 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		newHash = string(hash)
	}

	err = s.pool.QueryRow(ctx, `
		UPDATE users
		SET display_name = $1, password_hash = $2
		WHERE id = $3
		RETURNING id, email, password_hash, display_name, role, created_at
	`, input.DisplayName, newHash, userID).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}
