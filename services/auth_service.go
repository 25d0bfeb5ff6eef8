package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/zdenkokanos/MTAA-backend/models"
	"github.com/zdenkokanos/MTAA-backend/repositories"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	jwtClaimUserID    = "user_id"
)

type RegisterInput struct {
	FirstName          string   `json:"first_name"`
	LastName           string   `json:"last_name"`
	Gender             *string  `json:"gender"`
	Age                *int     `json:"age"`
	Email              string   `json:"email"`
	Password           string   `json:"password"`
	PreferredLocation  *string  `json:"preferred_location"`
	PreferredLatitude  *float64 `json:"preferred_latitude"`
	PreferredLongitude *float64 `json:"preferred_longitude"`
	CategoryIDs        []int    `json:"category_ids"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult - пользователь и выданный ему токен.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
}

// AuthConfig - секреты и параметры, разрешённые при старте процесса.
type AuthConfig struct {
	JWTSecret  []byte
	TokenTTL   time.Duration
	BcryptCost int
}

type authService struct {
	tx       repositories.Transactor
	userRepo repositories.UserRepository
	cfg      AuthConfig
	now      func() time.Time
	logger   *slog.Logger
}

func NewAuthService(tx repositories.Transactor, userRepo repositories.UserRepository, cfg AuthConfig, logger *slog.Logger) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		tx:       tx,
		userRepo: userRepo,
		cfg:      cfg,
		now:      time.Now,
		logger:   logger,
	}
}

func hashPassword(password string, cost int) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrEmailRequired
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%w: malformed email address", ErrInvalidInput)
	}
	return email, nil
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	if input.FirstName == "" || input.LastName == "" {
		return nil, ErrNameRequired
	}
	if input.PreferredLatitude != nil && input.PreferredLongitude != nil &&
		!validCoordinates(*input.PreferredLatitude, *input.PreferredLongitude) {
		return nil, ErrInvalidCoordinates
	}

	hash, err := hashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName:          input.FirstName,
		LastName:           input.LastName,
		Gender:             input.Gender,
		Age:                input.Age,
		Email:              email,
		PasswordHash:       hash,
		PreferredLocation:  input.PreferredLocation,
		PreferredLatitude:  input.PreferredLatitude,
		PreferredLongitude: input.PreferredLongitude,
	}

	err = s.tx.WithinTx(ctx, nil, func(exec repositories.SQLExecutor) error {
		if err := s.userRepo.Create(ctx, exec, user); err != nil {
			if errors.Is(err, repositories.ErrUserEmailConflict) {
				return ErrUserEmailConflict
			}
			return err
		}
		if err := s.userRepo.SetPreferredCategories(ctx, exec, user.ID, input.CategoryIDs); err != nil {
			if errors.Is(err, repositories.ErrUserInvalidCategory) {
				return ErrInvalidCategory
			}
			return err
		}
		return nil
	})
	if err != nil {
		err = classify("register user", err)
		logOutcome(ctx, s.logger, "user registration failed", err)
		return nil, err
	}
	user.PreferredCategoryIDs = input.CategoryIDs

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user registered", slog.Int("user_id", user.ID))

	user.PasswordHash = ""
	return &AuthResult{User: user, Token: token}, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, unavailable("login", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &AuthResult{User: user, Token: token}, nil
}

func (s *authService) issueToken(userID int) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		jwtClaimUserID: userID,
		"iat":          now.Unix(),
		"exp":          now.Add(s.cfg.TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.cfg.JWTSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
