package domain

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrDuplicateUsername  = errors.New("username already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is an organizer account. Events and members are owned by a user.
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	Name         string    `json:"name"`
	LastName     string    `json:"last_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(email, username, passwordHash, salt, name, lastName string, createdAt, updatedAt time.Time) *User {
	return &User{
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		Salt:         salt,
		Name:         name,
		LastName:     lastName,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// DisplayName returns the user's full name, falling back to the username.
func (u *User) DisplayName() string {
	name := u.Name
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Username
	}
	return name
}

// UserProfile holds the organizer's public identity token.
// UniqueHash is assigned once, when the profile is first stored, and never changes.
// swagger:model UserProfile
type UserProfile struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	UniqueHash string    `json:"unique_hash"`
	CreatedAt  time.Time `json:"created_at"`
}

// SignUpInput is the explicit set of fields accepted when creating an organizer account.
type SignUpInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
}

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 8

var usernameRegexp = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,30}$`)

// Normalize trims whitespace and lower-cases the email in place.
func (in *SignUpInput) Normalize() {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	in.LastName = strings.TrimSpace(in.LastName)
}

// Validate returns one message per invalid field; nil means valid.
func (in SignUpInput) Validate() []string {
	var errs []string
	if in.Email == "" {
		errs = append(errs, "email is required")
	} else if !IsEmail(in.Email) {
		errs = append(errs, "invalid email format")
	}
	if !usernameRegexp.MatchString(in.Username) {
		errs = append(errs, "username must be 3-30 letters, digits, dots, dashes or underscores")
	}
	if len(in.Password) < MinPasswordLength {
		errs = append(errs, "password must be at least 8 characters")
	}
	return errs
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues bearer tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a bearer token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// HashAssigner picks a profile hash and passes it to insert, retrying with a
// fresh hash while insert returns ErrDuplicateToken.
type HashAssigner func(ctx context.Context, insert func(ctx context.Context, hash string) error) error

// UserRepository defines the interface for user storage
type UserRepository interface {
	// CreateWithProfile stores user and profile atomically. Neither row
	// persists unless both inserts succeed.
	CreateWithProfile(ctx context.Context, user *User, profile *UserProfile, assign HashAssigner) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// UserProfileRepository defines storage for user profiles.
// Profiles are created together with their user by UserRepository.CreateWithProfile.
type UserProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*UserProfile, error)
}

// UserService defines organizer sign-up, login, and profile lookup.
type UserService interface {
	SignUp(ctx context.Context, in SignUpInput) (*User, *UserProfile, error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
	GetProfile(ctx context.Context, userID string) (*User, *UserProfile, error)
}
