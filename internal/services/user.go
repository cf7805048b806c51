package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"embervite/internal/domain"
	"embervite/internal/token"
)

type userService struct {
	userRepo       domain.UserRepository
	profileRepo    domain.UserProfileRepository
	hasher         domain.PasswordHasher
	tokens         *token.Generator
	tokenIssuer    domain.TokenIssuer
	tokenExpiry    time.Duration
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewUserService creates a UserService with the given repositories and auth ports.
// emailService may be nil, in which case no welcome message is sent.
func NewUserService(
	userRepo domain.UserRepository,
	profileRepo domain.UserProfileRepository,
	hasher domain.PasswordHasher,
	tokens *token.Generator,
	tokenIssuer domain.TokenIssuer,
	tokenExpiry time.Duration,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.UserService {
	return &userService{
		userRepo:       userRepo,
		profileRepo:    profileRepo,
		hasher:         hasher,
		tokens:         tokens,
		tokenIssuer:    tokenIssuer,
		tokenExpiry:    tokenExpiry,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *userService) SignUp(ctx context.Context, in domain.SignUpInput) (*domain.User, *domain.UserProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	in.Normalize()
	if errs := in.Validate(); len(errs) > 0 {
		return nil, nil, &domain.ValidationError{Messages: errs}
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, nil, fmt.Errorf("generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, in.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.NewUser(in.Email, in.Username, hash, salt, in.Name, in.LastName, now, now)
	profile := &domain.UserProfile{CreatedAt: now}
	assign := func(ctx context.Context, insert func(ctx context.Context, hash string) error) error {
		_, err := s.tokens.InsertUnique(ctx, insert)
		return err
	}
	if err := s.userRepo.CreateWithProfile(ctx, user, profile, assign); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) || errors.Is(err, domain.ErrDuplicateUsername) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	if s.emailService != nil {
		data := &domain.WelcomeMessageEmailData{Email: user.Email, Name: user.DisplayName(), Username: user.Username}
		if err := s.emailService.SendWelcomeMessage(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "welcome email not sent", "user_id", user.ID, "error", err)
		}
	}
	return user, profile, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	in := domain.SignUpInput{Email: email}
	in.Normalize()
	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	tok, err := s.tokenIssuer.Issue(user.ID, user.Email, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return tok, user, nil
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*domain.User, *domain.UserProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, fmt.Errorf("get profile: %w", err)
	}
	return user, profile, nil
}
