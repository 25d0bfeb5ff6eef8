package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/zdenkokanos/MTAA-backend/models"
	"github.com/zdenkokanos/MTAA-backend/repositories"
	"github.com/zdenkokanos/MTAA-backend/storage"
)

type TournamentInput struct {
	Name             string     `json:"tournament_name"`
	CategoryID       int        `json:"category_id"`
	LocationName     string     `json:"location_name"`
	Latitude         float64    `json:"latitude"`
	Longitude        float64    `json:"longitude"`
	Level            string     `json:"level"`
	MaxTeamSize      int        `json:"max_team_size"`
	GameSetting      string     `json:"game_setting"`
	EntryFee         float64    `json:"entry_fee"`
	PrizeDescription *string    `json:"prize_description"`
	IsPublic         *bool      `json:"is_public"`
	AdditionalInfo   *string    `json:"additional_info"`
	Date             *time.Time `json:"date"`
}

type TournamentService interface {
	ListTournaments(ctx context.Context, categoryName *string) ([]models.Tournament, error)
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	CreateTournament(ctx context.Context, ownerID int, input TournamentInput) (*models.Tournament, error)
	UpdateTournament(ctx context.Context, id, callerID int, input TournamentInput) (*models.Tournament, error)
	StartTournament(ctx context.Context, id, callerID int) error
	StopTournament(ctx context.Context, id, callerID int) error
	UploadImage(ctx context.Context, id, callerID int, file io.Reader, contentType string) (*models.Tournament, error)

	ListCategories(ctx context.Context) ([]models.SportCategory, error)
	GetCategoryIDByName(ctx context.Context, name string) (int, error)

	GetLeaderboard(ctx context.Context, tournamentID int) ([]models.LeaderboardEntry, error)
	SetLeaderboardPosition(ctx context.Context, tournamentID, callerID, teamID, position int) error
	RemoveFromLeaderboard(ctx context.Context, tournamentID, callerID, teamID int) error
}

type tournamentService struct {
	tx              repositories.Transactor
	tournamentRepo  repositories.TournamentRepository
	categoryRepo    repositories.CategoryRepository
	teamRepo        repositories.TeamRepository
	leaderboardRepo repositories.LeaderboardRepository
	uploader        storage.FileUploader
	logger          *slog.Logger
}

func NewTournamentService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	categoryRepo repositories.CategoryRepository,
	teamRepo repositories.TeamRepository,
	leaderboardRepo repositories.LeaderboardRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &tournamentService{
		tx:              tx,
		tournamentRepo:  tournamentRepo,
		categoryRepo:    categoryRepo,
		teamRepo:        teamRepo,
		leaderboardRepo: leaderboardRepo,
		uploader:        uploader,
		logger:          logger,
	}
}

func validateTournamentInput(input *TournamentInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return ErrTournamentNameRequired
	}
	if input.MaxTeamSize <= 0 {
		return ErrInvalidTeamSize
	}
	if !validCoordinates(input.Latitude, input.Longitude) {
		return ErrInvalidCoordinates
	}
	if input.EntryFee < 0 {
		return fmt.Errorf("%w: entry fee must not be negative", ErrInvalidInput)
	}
	return nil
}

func applyTournamentInput(t *models.Tournament, input TournamentInput) {
	t.Name = input.Name
	t.CategoryID = input.CategoryID
	t.LocationName = input.LocationName
	t.Latitude = input.Latitude
	t.Longitude = input.Longitude
	t.Level = input.Level
	t.MaxTeamSize = input.MaxTeamSize
	t.GameSetting = input.GameSetting
	t.EntryFee = input.EntryFee
	t.PrizeDescription = input.PrizeDescription
	t.AdditionalInfo = input.AdditionalInfo
	t.Date = input.Date
	if input.IsPublic != nil {
		t.IsPublic = *input.IsPublic
	}
}

func mapTournamentWriteError(op string, err error) error {
	switch {
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentNameConflict):
		return ErrTournamentNameConflict
	case errors.Is(err, repositories.ErrTournamentInvalidCategory):
		return ErrInvalidCategory
	case errors.Is(err, repositories.ErrTournamentInvalidOwner):
		return ErrUserNotFound
	case errors.Is(err, repositories.ErrTournamentInvalidData):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return classify(op, err)
}

func (s *tournamentService) ListTournaments(ctx context.Context, categoryName *string) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{CategoryName: categoryName})
	if err != nil {
		return nil, unavailable("list tournaments", err)
	}
	for i := range tournaments {
		populateTournamentImageURL(&tournaments[i], s.uploader)
	}
	return tournaments, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, classify("get tournament", mapTournamentError(err))
	}
	populateTournamentImageURL(t, s.uploader)
	return t, nil
}

// getOwned загружает турнир и проверяет, что вызывающий - его владелец.
func (s *tournamentService) getOwned(ctx context.Context, id, callerID int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, classify("get tournament", mapTournamentError(err))
	}
	if t.OwnerID != callerID {
		return nil, ErrNotTournamentOwner
	}
	return t, nil
}

func (s *tournamentService) CreateTournament(ctx context.Context, ownerID int, input TournamentInput) (*models.Tournament, error) {
	if err := validateTournamentInput(&input); err != nil {
		return nil, err
	}

	t := &models.Tournament{
		OwnerID:  ownerID,
		Status:   models.StatusUpcoming,
		IsPublic: true,
	}
	applyTournamentInput(t, input)

	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		err = mapTournamentWriteError("create tournament", err)
		logOutcome(ctx, s.logger, "create tournament failed", err, slog.Int("owner_id", ownerID))
		return nil, err
	}

	s.logger.InfoContext(ctx, "tournament created", slog.Int("tournament_id", t.ID), slog.Int("owner_id", ownerID))
	return s.GetTournament(ctx, t.ID)
}

func (s *tournamentService) UpdateTournament(ctx context.Context, id, callerID int, input TournamentInput) (*models.Tournament, error) {
	if err := validateTournamentInput(&input); err != nil {
		return nil, err
	}

	t, err := s.getOwned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	if t.Status == models.StatusClosed {
		return nil, ErrTournamentClosed
	}

	applyTournamentInput(t, input)
	if err := s.tournamentRepo.Update(ctx, t); err != nil {
		err = mapTournamentWriteError("update tournament", err)
		logOutcome(ctx, s.logger, "update tournament failed", err, slog.Int("tournament_id", id))
		return nil, err
	}
	return s.GetTournament(ctx, id)
}

func (s *tournamentService) StartTournament(ctx context.Context, id, callerID int) error {
	return s.transition(ctx, id, callerID, models.StatusUpcoming, models.StatusOngoing)
}

func (s *tournamentService) StopTournament(ctx context.Context, id, callerID int) error {
	return s.transition(ctx, id, callerID, models.StatusOngoing, models.StatusClosed)
}

// transition выполняет переход статуса; обратные переходы невозможны,
// так как UPDATE срабатывает только из статуса from.
func (s *tournamentService) transition(ctx context.Context, id, callerID int, from, to models.TournamentStatus) error {
	if _, err := s.getOwned(ctx, id, callerID); err != nil {
		return err
	}
	err := s.tournamentRepo.UpdateStatus(ctx, nil, id, from, to)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentStatusMismatch) {
			return fmt.Errorf("%w: expected %s to move to %s", ErrInvalidStatusChange, from, to)
		}
		err = classify("update tournament status", err)
		logOutcome(ctx, s.logger, "tournament status update failed", err, slog.Int("tournament_id", id))
		return err
	}
	s.logger.InfoContext(ctx, "tournament status changed",
		slog.Int("tournament_id", id), slog.String("from", string(from)), slog.String("to", string(to)))
	return nil
}

func (s *tournamentService) UploadImage(ctx context.Context, id, callerID int, file io.Reader, contentType string) (*models.Tournament, error) {
	if s.uploader == nil {
		return nil, ErrImageUploadNotAvailable
	}
	t, err := s.getOwned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, err
	}

	key := storage.ObjectKey("tournaments", id, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, unavailable("upload tournament image", err)
	}
	if err := s.tournamentRepo.UpdateImageKey(ctx, id, &key); err != nil {
		if delErr := s.uploader.Delete(ctx, key); delErr != nil {
			s.logger.WarnContext(ctx, "failed to delete orphaned tournament image", slog.String("key", key), slog.Any("error", delErr))
		}
		return nil, classify("update tournament image", mapTournamentError(err))
	}

	if t.ImageKey != nil && *t.ImageKey != "" && *t.ImageKey != key {
		if delErr := s.uploader.Delete(ctx, *t.ImageKey); delErr != nil {
			s.logger.WarnContext(ctx, "failed to delete previous tournament image", slog.String("key", *t.ImageKey), slog.Any("error", delErr))
		}
	}
	return s.GetTournament(ctx, id)
}

func (s *tournamentService) ListCategories(ctx context.Context) ([]models.SportCategory, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, unavailable("list categories", err)
	}
	return categories, nil
}

func (s *tournamentService) GetCategoryIDByName(ctx context.Context, name string) (int, error) {
	id, err := s.categoryRepo.GetIDByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return 0, ErrCategoryNotFound
		}
		return 0, unavailable("get category id", err)
	}
	return id, nil
}

func (s *tournamentService) GetLeaderboard(ctx context.Context, tournamentID int) ([]models.LeaderboardEntry, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, classify("get leaderboard", mapTournamentError(err))
	}
	entries, err := s.leaderboardRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, unavailable("get leaderboard", err)
	}
	return entries, nil
}

func leaderboardOpen(status models.TournamentStatus) bool {
	return status == models.StatusOngoing || status == models.StatusClosed
}

// SetLeaderboardPosition ставит команду на позицию; прежний обладатель позиции вытесняется.
// Команда, уже стоящая на другой позиции, переносится.
func (s *tournamentService) SetLeaderboardPosition(ctx context.Context, tournamentID, callerID, teamID, position int) error {
	if position < 1 {
		return ErrInvalidPosition
	}
	t, err := s.getOwned(ctx, tournamentID, callerID)
	if err != nil {
		return err
	}
	if !leaderboardOpen(t.Status) {
		return ErrLeaderboardNotOpen
	}

	err = s.tx.WithinTx(ctx, nil, func(exec repositories.SQLExecutor) error {
		team, err := s.teamRepo.GetByID(ctx, exec, teamID)
		if err != nil {
			return mapTeamError(err)
		}
		if team.TournamentID != tournamentID {
			return ErrTeamNotInTournament
		}
		if err := s.leaderboardRepo.ClearTeam(ctx, exec, tournamentID, teamID); err != nil {
			return err
		}
		entry := &models.LeaderboardEntry{TournamentID: tournamentID, TeamID: teamID, Position: position}
		if err := s.leaderboardRepo.Upsert(ctx, exec, entry); err != nil {
			switch {
			case errors.Is(err, repositories.ErrLeaderboardTeamConflict):
				return ErrLeaderboardTeamPlaced
			case errors.Is(err, repositories.ErrLeaderboardInvalidRef):
				return ErrTeamNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		err = classify("set leaderboard position", err)
		logOutcome(ctx, s.logger, "set leaderboard position failed", err,
			slog.Int("tournament_id", tournamentID), slog.Int("team_id", teamID))
		return err
	}
	return nil
}

func (s *tournamentService) RemoveFromLeaderboard(ctx context.Context, tournamentID, callerID, teamID int) error {
	t, err := s.getOwned(ctx, tournamentID, callerID)
	if err != nil {
		return err
	}
	if !leaderboardOpen(t.Status) {
		return ErrLeaderboardNotOpen
	}
	if err := s.leaderboardRepo.Remove(ctx, tournamentID, teamID); err != nil {
		if errors.Is(err, repositories.ErrLeaderboardEntryNotFound) {
			return ErrLeaderboardEntryNotFound
		}
		return unavailable("remove leaderboard entry", err)
	}
	return nil
}
