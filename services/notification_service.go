package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/zdenkokanos/MTAA-backend/metrics"
	"github.com/zdenkokanos/MTAA-backend/models"
	"github.com/zdenkokanos/MTAA-backend/push"
	"github.com/zdenkokanos/MTAA-backend/repositories"
	"golang.org/x/sync/errgroup"
)

const (
	reminderLead      = time.Hour
	reminderTolerance = time.Minute
	pushConcurrency   = 8
)

type NotificationService interface {
	RegisterPushToken(ctx context.Context, userID int, token string, platform *string) error
	SendUpcomingReminders(ctx context.Context) error
}

type notificationService struct {
	tournamentRepo repositories.TournamentRepository
	pushTokenRepo  repositories.PushTokenRepository
	sender         push.Sender
	metrics        *metrics.Metrics
	logger         *slog.Logger
	now            func() time.Time
}

func NewNotificationService(
	tournamentRepo repositories.TournamentRepository,
	pushTokenRepo repositories.PushTokenRepository,
	sender push.Sender,
	m *metrics.Metrics,
	logger *slog.Logger,
) NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &notificationService{
		tournamentRepo: tournamentRepo,
		pushTokenRepo:  pushTokenRepo,
		sender:         sender,
		metrics:        m,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *notificationService) RegisterPushToken(ctx context.Context, userID int, token string, platform *string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrPushTokenRequired
	}
	err := s.pushTokenRepo.Save(ctx, &models.PushToken{UserID: userID, Token: token, Platform: platform})
	if err != nil {
		if errors.Is(err, repositories.ErrPushTokenUserInvalid) {
			return ErrUserNotFound
		}
		return unavailable("save push token", err)
	}
	return nil
}

// SendUpcomingReminders уведомляет участников турниров, начинающихся примерно через час.
// Ошибки отдельных отправок логируются и не прерывают обход.
func (s *notificationService) SendUpcomingReminders(ctx context.Context) error {
	now := s.now()
	from := now.Add(reminderLead - reminderTolerance)
	to := now.Add(reminderLead + reminderTolerance)

	tournaments, err := s.tournamentRepo.ListStartingBetween(ctx, from, to)
	if err != nil {
		return unavailable("list upcoming tournaments", err)
	}

	for _, t := range tournaments {
		recipients, err := s.pushTokenRepo.ListRecipientsForTournament(ctx, t.ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to load push recipients",
				slog.Int("tournament_id", t.ID), slog.Any("error", err))
			continue
		}
		s.sendAll(ctx, t, recipients)
	}
	return nil
}

func (s *notificationService) sendAll(ctx context.Context, t models.Tournament, recipients []models.PushRecipient) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pushConcurrency)

	for _, r := range recipients {
		g.Go(func() error {
			msg := push.Message{
				To:    r.Token,
				Title: fmt.Sprintf("Tournament %q will start in 1 hour.", t.Name),
				Body:  fmt.Sprintf("Get ready, %s!", r.FirstName),
				Sound: "default",
				Data:  map[string]string{"tournament_id": fmt.Sprint(t.ID)},
			}
			if err := s.sender.Send(gctx, msg); err != nil {
				s.metrics.PushNotification(metrics.OutcomeError)
				s.logger.WarnContext(gctx, "push notification failed",
					slog.Int("tournament_id", t.ID), slog.Int("user_id", r.UserID), slog.Any("error", err))
				return nil
			}
			s.metrics.PushNotification(metrics.OutcomeSuccess)
			return nil
		})
	}
	_ = g.Wait()

	s.logger.InfoContext(ctx, "tournament reminders sent",
		slog.Int("tournament_id", t.ID), slog.Int("recipients", len(recipients)))
}
