package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zdenkokanos/MTAA-backend/models"
	"github.com/zdenkokanos/MTAA-backend/push"
	"github.com/zdenkokanos/MTAA-backend/repositories"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []push.Message
	fail map[string]bool
}

func (f *fakeSender) Send(ctx context.Context, msg push.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[msg.To] {
		return push.ErrRejected
	}
	f.sent = append(f.sent, msg)
	return nil
}

func TestSendUpcomingReminders(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	var gotFrom, gotTo time.Time
	tournaments := &fakeTournamentRepo{
		ListStartingBetweenFunc: func(ctx context.Context, from, to time.Time) ([]models.Tournament, error) {
			gotFrom, gotTo = from, to
			return []models.Tournament{{ID: 1, Name: "Spring Cup"}, {ID: 2, Name: "Broken"}}, nil
		},
	}
	tokens := &fakePushTokenRepo{
		ListRecipientsForTournamentFunc: func(ctx context.Context, tournamentID int) ([]models.PushRecipient, error) {
			if tournamentID == 2 {
				return nil, errors.New("connection reset")
			}
			return []models.PushRecipient{
				{UserID: 1, FirstName: "Jana", Token: "ExponentPushToken[a]"},
				{UserID: 2, FirstName: "Peter", Token: "ExponentPushToken[b]"},
				{UserID: 3, FirstName: "Eva", Token: "ExponentPushToken[c]"},
			}, nil
		},
	}
	sender := &fakeSender{fail: map[string]bool{"ExponentPushToken[b]": true}}

	svc := NewNotificationService(tournaments, tokens, sender, nil, discardLogger())
	svc.(*notificationService).now = func() time.Time { return now }

	require.NoError(t, svc.SendUpcomingReminders(context.Background()))

	assert.Equal(t, now.Add(59*time.Minute), gotFrom)
	assert.Equal(t, now.Add(61*time.Minute), gotTo)

	require.Len(t, sender.sent, 2, "a failed send must not stop the others")
	sort.Slice(sender.sent, func(i, j int) bool { return sender.sent[i].To < sender.sent[j].To })
	assert.Equal(t, `Tournament "Spring Cup" will start in 1 hour.`, sender.sent[0].Title)
	assert.Equal(t, "Get ready, Jana!", sender.sent[0].Body)
	assert.Equal(t, "1", sender.sent[0].Data["tournament_id"])
	assert.Equal(t, "Get ready, Eva!", sender.sent[1].Body)
}

func TestSendUpcomingRemindersStorageDown(t *testing.T) {
	tournaments := &fakeTournamentRepo{
		ListStartingBetweenFunc: func(ctx context.Context, from, to time.Time) ([]models.Tournament, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := NewNotificationService(tournaments, &fakePushTokenRepo{}, &fakeSender{}, nil, discardLogger())

	err := svc.SendUpcomingReminders(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRegisterPushToken(t *testing.T) {
	var saved *models.PushToken
	tokens := &fakePushTokenRepo{
		SaveFunc: func(ctx context.Context, token *models.PushToken) error {
			if token.UserID == 404 {
				return repositories.ErrPushTokenUserInvalid
			}
			saved = token
			return nil
		},
	}
	svc := NewNotificationService(nil, tokens, &fakeSender{}, nil, discardLogger())
	ctx := context.Background()

	ios := "ios"
	require.NoError(t, svc.RegisterPushToken(ctx, 7, " ExponentPushToken[x] ", &ios))
	require.NotNil(t, saved)
	assert.Equal(t, "ExponentPushToken[x]", saved.Token)
	assert.Equal(t, 7, saved.UserID)

	assert.ErrorIs(t, svc.RegisterPushToken(ctx, 7, "  ", nil), ErrPushTokenRequired)
	assert.ErrorIs(t, svc.RegisterPushToken(ctx, 404, "ExponentPushToken[y]", nil), ErrUserNotFound)
}
