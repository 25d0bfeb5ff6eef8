package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/zdenkokanos/MTAA-backend/models"
	"github.com/zdenkokanos/MTAA-backend/repositories"
	"github.com/zdenkokanos/MTAA-backend/storage"
	"golang.org/x/crypto/bcrypt"
)

type UpdateProfileInput struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Gender    *string `json:"gender"`
	Age       *int    `json:"age"`
	Email     string  `json:"email"`
}

type UpdatePreferencesInput struct {
	PreferredLocation  *string  `json:"preferred_location"`
	PreferredLatitude  *float64 `json:"preferred_latitude"`
	PreferredLongitude *float64 `json:"preferred_longitude"`
	CategoryIDs        []int    `json:"category_ids"`
}

type ChangePasswordInput struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type UserService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
	GetUserIDByEmail(ctx context.Context, email string) (int, error)
	ChangePassword(ctx context.Context, id int, input ChangePasswordInput) error
	UpdateProfile(ctx context.Context, id int, input UpdateProfileInput) (*models.User, error)
	UpdatePreferences(ctx context.Context, id int, input UpdatePreferencesInput) (*models.User, error)
	UploadImage(ctx context.Context, id int, file io.Reader, contentType string) (*models.User, error)

	ListCurrentTournaments(ctx context.Context, id int) ([]models.Tournament, error)
	ListTournamentHistory(ctx context.Context, id int) ([]models.Tournament, error)
	ListOwnedTournaments(ctx context.Context, id int) ([]models.Tournament, error)
	ListTickets(ctx context.Context, id int) ([]models.UserTicket, error)
}

type userService struct {
	tx             repositories.Transactor
	userRepo       repositories.UserRepository
	tournamentRepo repositories.TournamentRepository
	membershipRepo repositories.MembershipRepository
	uploader       storage.FileUploader
	bcryptCost     int
	logger         *slog.Logger
}

func NewUserService(
	tx repositories.Transactor,
	userRepo repositories.UserRepository,
	tournamentRepo repositories.TournamentRepository,
	membershipRepo repositories.MembershipRepository,
	uploader storage.FileUploader,
	bcryptCost int,
	logger *slog.Logger,
) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		tx:             tx,
		userRepo:       userRepo,
		tournamentRepo: tournamentRepo,
		membershipRepo: membershipRepo,
		uploader:       uploader,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

func mapUserError(op string, err error) error {
	switch {
	case errors.Is(err, repositories.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repositories.ErrUserEmailConflict):
		return ErrUserEmailConflict
	case errors.Is(err, repositories.ErrUserInvalidCategory):
		return ErrInvalidCategory
	}
	return classify(op, err)
}

func (s *userService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, unavailable("list users", err)
	}
	for i := range users {
		populateUserDetails(&users[i], s.uploader)
	}
	return users, nil
}

func (s *userService) GetUser(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapUserError("get user", err)
	}
	categoryIDs, err := s.userRepo.ListPreferredCategoryIDs(ctx, id)
	if err != nil {
		return nil, unavailable("get user categories", err)
	}
	user.PreferredCategoryIDs = categoryIDs
	populateUserDetails(user, s.uploader)
	return user, nil
}

func (s *userService) GetUserIDByEmail(ctx context.Context, email string) (int, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return 0, mapUserError("get user by email", err)
	}
	return user.ID, nil
}

func (s *userService) ChangePassword(ctx context.Context, id int, input ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return mapUserError("change password", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)); err != nil {
		return ErrInvalidCredentials
	}
	hash, err := hashPassword(input.NewPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, id, hash); err != nil {
		return mapUserError("change password", err)
	}
	s.logger.InfoContext(ctx, "password changed", slog.Int("user_id", id))
	return nil
}

func (s *userService) UpdateProfile(ctx context.Context, id int, input UpdateProfileInput) (*models.User, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || lastName == "" {
		return nil, ErrNameRequired
	}

	user := &models.User{
		ID:        id,
		FirstName: firstName,
		LastName:  lastName,
		Gender:    input.Gender,
		Age:       input.Age,
		Email:     email,
	}
	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, mapUserError("update profile", err)
	}
	return s.GetUser(ctx, id)
}

func (s *userService) UpdatePreferences(ctx context.Context, id int, input UpdatePreferencesInput) (*models.User, error) {
	if (input.PreferredLatitude == nil) != (input.PreferredLongitude == nil) {
		return nil, ErrInvalidCoordinates
	}
	if input.PreferredLatitude != nil && !validCoordinates(*input.PreferredLatitude, *input.PreferredLongitude) {
		return nil, ErrInvalidCoordinates
	}

	err := s.tx.WithinTx(ctx, nil, func(exec repositories.SQLExecutor) error {
		if err := s.userRepo.UpdatePreferences(ctx, exec, id,
			input.PreferredLocation, input.PreferredLatitude, input.PreferredLongitude); err != nil {
			return err
		}
		if input.CategoryIDs != nil {
			return s.userRepo.SetPreferredCategories(ctx, exec, id, input.CategoryIDs)
		}
		return nil
	})
	if err != nil {
		return nil, mapUserError("update preferences", err)
	}
	return s.GetUser(ctx, id)
}

func (s *userService) UploadImage(ctx context.Context, id int, file io.Reader, contentType string) (*models.User, error) {
	if s.uploader == nil {
		return nil, ErrImageUploadNotAvailable
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapUserError("upload user image", err)
	}
	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, err
	}

	key := storage.ObjectKey("users", id, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, unavailable("upload user image", err)
	}
	if err := s.userRepo.UpdateImageKey(ctx, id, &key); err != nil {
		if delErr := s.uploader.Delete(ctx, key); delErr != nil {
			s.logger.WarnContext(ctx, "failed to delete orphaned user image", slog.String("key", key), slog.Any("error", delErr))
		}
		return nil, mapUserError("update user image", err)
	}
	if old := derefString(user.ImageKey); old != "" && old != key {
		if delErr := s.uploader.Delete(ctx, old); delErr != nil {
			s.logger.WarnContext(ctx, "failed to delete previous user image", slog.String("key", old), slog.Any("error", delErr))
		}
	}
	return s.GetUser(ctx, id)
}

func (s *userService) ListCurrentTournaments(ctx context.Context, id int) ([]models.Tournament, error) {
	return s.listTournaments(ctx, id, func() ([]models.Tournament, error) {
		return s.tournamentRepo.ListByMember(ctx, id, false)
	})
}

func (s *userService) ListTournamentHistory(ctx context.Context, id int) ([]models.Tournament, error) {
	return s.listTournaments(ctx, id, func() ([]models.Tournament, error) {
		return s.tournamentRepo.ListByMember(ctx, id, true)
	})
}

func (s *userService) ListOwnedTournaments(ctx context.Context, id int) ([]models.Tournament, error) {
	return s.listTournaments(ctx, id, func() ([]models.Tournament, error) {
		return s.tournamentRepo.ListByOwner(ctx, id)
	})
}

func (s *userService) listTournaments(ctx context.Context, id int, load func() ([]models.Tournament, error)) ([]models.Tournament, error) {
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return nil, mapUserError("list user tournaments", err)
	}
	tournaments, err := load()
	if err != nil {
		return nil, unavailable("list user tournaments", err)
	}
	for i := range tournaments {
		populateTournamentImageURL(&tournaments[i], s.uploader)
	}
	return tournaments, nil
}

func (s *userService) ListTickets(ctx context.Context, id int) ([]models.UserTicket, error) {
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return nil, mapUserError("list tickets", err)
	}
	tickets, err := s.membershipRepo.ListTicketsByUser(ctx, id)
	if err != nil {
		return nil, unavailable("list tickets", err)
	}
	return tickets, nil
}
