package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/zdenkokanos/MTAA-backend/metrics"
	"github.com/zdenkokanos/MTAA-backend/models"
	"github.com/zdenkokanos/MTAA-backend/repositories"
)

// TeamService - реестр команд: создание команд, вступление по коду и проверка билетов.
type TeamService interface {
	CreateTeam(ctx context.Context, tournamentID int, teamName string, userID int) (*models.TeamRegistration, error)
	JoinTeam(ctx context.Context, tournamentID int, joinCode string, userID int) (string, error)
	CheckTicket(ctx context.Context, tournamentID, callerID int, ticket string) (*models.TeamMembership, error)
	ListEnrolledTeams(ctx context.Context, tournamentID int) ([]models.EnrolledTeam, error)
	CountTeams(ctx context.Context, tournamentID int) (int, error)
}

type teamService struct {
	tx             repositories.Transactor
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	membershipRepo repositories.MembershipRepository
	codes          CodeGenerator
	notifier       EnrollmentNotifier
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

// NewTeamService создаёт TeamService. codes и notifier могут быть nil.
func NewTeamService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	membershipRepo repositories.MembershipRepository,
	codes CodeGenerator,
	notifier EnrollmentNotifier,
	m *metrics.Metrics,
	logger *slog.Logger,
) TeamService {
	if codes == nil {
		codes = NewRandomCodeGenerator()
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &teamService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		membershipRepo: membershipRepo,
		codes:          codes,
		notifier:       notifier,
		metrics:        m,
		logger:         logger,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, tournamentID int, teamName string, userID int) (reg *models.TeamRegistration, err error) {
	defer func() { s.observe(ctx, "create_team", err, tournamentID, userID) }()

	teamName = strings.TrimSpace(teamName)
	if teamName == "" {
		return nil, ErrTeamNameRequired
	}

	code, err := s.codes.JoinCode()
	if err != nil {
		return nil, unavailable("generate join code", err)
	}
	ticket, err := s.codes.Ticket()
	if err != nil {
		return nil, unavailable("generate ticket", err)
	}

	team := &models.Team{TournamentID: tournamentID, Name: teamName, Code: code}

	err = s.tx.WithinTx(ctx, nil, func(exec repositories.SQLExecutor) error {
		tournament, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
		if err != nil {
			return mapTournamentError(err)
		}
		if tournament.Status != models.StatusUpcoming {
			return ErrRegistrationClosed
		}

		if err := s.teamRepo.Create(ctx, exec, team); err != nil {
			return mapTeamError(err)
		}

		membership := &models.TeamMembership{
			UserID:       userID,
			TeamID:       team.ID,
			TournamentID: tournamentID,
			Ticket:       ticket,
		}
		if err := s.membershipRepo.Create(ctx, exec, membership); err != nil {
			return mapMembershipError(err)
		}
		return nil
	})
	if err != nil {
		return nil, classify("create team", err)
	}

	s.notifier.EmitEnrollmentChanged(tournamentID)
	return &models.TeamRegistration{TeamID: team.ID, TeamCode: code, Ticket: ticket}, nil
}

// JoinTeam добавляет пользователя в команду по коду приглашения.
// Строка команды блокируется на время подсчёта участников и вставки,
// поэтому параллельные вступления в одну команду выполняются по очереди.
func (s *teamService) JoinTeam(ctx context.Context, tournamentID int, joinCode string, userID int) (ticket string, err error) {
	defer func() { s.observe(ctx, "join_team", err, tournamentID, userID) }()

	joinCode = normalizeCode(joinCode)
	if joinCode == "" {
		return "", ErrJoinCodeRequired
	}

	ticket, err = s.codes.Ticket()
	if err != nil {
		return "", unavailable("generate ticket", err)
	}

	err = s.tx.WithinTx(ctx, nil, func(exec repositories.SQLExecutor) error {
		team, err := s.teamRepo.FindByCode(ctx, exec, tournamentID, joinCode, true)
		if err != nil {
			return mapTeamError(err)
		}

		tournament, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
		if err != nil {
			return mapTournamentError(err)
		}
		if tournament.Status != models.StatusUpcoming {
			return ErrRegistrationClosed
		}

		count, err := s.membershipRepo.CountByTeam(ctx, exec, team.ID)
		if err != nil {
			return unavailable("count memberships", err)
		}
		if count >= tournament.MaxTeamSize {
			return ErrTeamFull
		}

		membership := &models.TeamMembership{
			UserID:       userID,
			TeamID:       team.ID,
			TournamentID: tournamentID,
			Ticket:       ticket,
		}
		if err := s.membershipRepo.Create(ctx, exec, membership); err != nil {
			return mapMembershipError(err)
		}
		return nil
	})
	if err != nil {
		return "", classify("join team", err)
	}

	s.notifier.EmitEnrollmentChanged(tournamentID)
	return ticket, nil
}

// CheckTicket ищет участие по билету. Проверять билеты может только владелец турнира.
func (s *teamService) CheckTicket(ctx context.Context, tournamentID, callerID int, ticket string) (*models.TeamMembership, error) {
	ticket = normalizeCode(ticket)
	if ticket == "" {
		return nil, ErrTicketRequired
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, classify("check ticket", mapTournamentError(err))
	}
	if tournament.OwnerID != callerID {
		return nil, ErrNotTournamentOwner
	}
	membership, err := s.membershipRepo.FindByTicket(ctx, tournamentID, ticket)
	if err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, unavailable("check ticket", err)
	}
	return membership, nil
}

func (s *teamService) ListEnrolledTeams(ctx context.Context, tournamentID int) ([]models.EnrolledTeam, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, classify("list enrolled teams", mapTournamentError(err))
	}
	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, unavailable("list enrolled teams", err)
	}
	return teams, nil
}

func (s *teamService) CountTeams(ctx context.Context, tournamentID int) (int, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return 0, classify("count teams", mapTournamentError(err))
	}
	count, err := s.teamRepo.CountByTournament(ctx, tournamentID)
	if err != nil {
		return 0, unavailable("count teams", err)
	}
	return count, nil
}

func (s *teamService) observe(ctx context.Context, op string, err error, tournamentID, userID int) {
	s.metrics.RegistryOperation(op, outcomeOf(err))
	if err == nil {
		s.logger.InfoContext(ctx, "registry operation succeeded",
			slog.String("operation", op), slog.Int("tournament_id", tournamentID), slog.Int("user_id", userID))
		return
	}
	logOutcome(ctx, s.logger, "registry operation failed", err,
		slog.String("operation", op), slog.Int("tournament_id", tournamentID), slog.Int("user_id", userID))
}

func mapTournamentError(err error) error {
	if errors.Is(err, repositories.ErrTournamentNotFound) {
		return ErrTournamentNotFound
	}
	return err
}

func mapTeamError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrTeamNameConflict):
		return ErrTeamNameConflict
	case errors.Is(err, repositories.ErrTeamCodeConflict):
		return ErrTeamCodeConflict
	case errors.Is(err, repositories.ErrTeamTournamentInvalid):
		return ErrTournamentNotFound
	}
	return err
}

func mapMembershipError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrMembershipTicketConflict):
		return ErrTicketConflict
	case errors.Is(err, repositories.ErrMembershipAlreadyExists):
		return ErrAlreadyEnrolled
	case errors.Is(err, repositories.ErrMembershipInvalidRef):
		return ErrUserNotFound
	}
	return err
}
