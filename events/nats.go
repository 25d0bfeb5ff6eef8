// Package events публикует доменные события в NATS.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// EnrollmentChangedEvent публикуется после изменения состава команд турнира.
type EnrollmentChangedEvent struct {
	TournamentID int       `json:"tournament_id"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// EnrollmentSubject возвращает тему NATS для событий турнира.
func EnrollmentSubject(tournamentID int) string {
	return fmt.Sprintf("tournaments.%d.enrollment", tournamentID)
}

type publisher interface {
	Publish(subj string, data []byte) error
}

// NATSPublisher отправляет события без ожидания подтверждения.
type NATSPublisher struct {
	conn   publisher
	logger *slog.Logger
	now    func() time.Time
}

// Connect подключается к NATS и возвращает соединение для NewNATSPublisher.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("MTAA Backend"),
		nats.Timeout(10*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return conn, nil
}

func NewNATSPublisher(conn publisher, logger *slog.Logger) *NATSPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NATSPublisher{conn: conn, logger: logger, now: time.Now}
}

func (p *NATSPublisher) EmitEnrollmentChanged(tournamentID int) {
	data, err := json.Marshal(EnrollmentChangedEvent{TournamentID: tournamentID, OccurredAt: p.now().UTC()})
	if err != nil {
		p.logger.Error("failed to encode enrollment event", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return
	}
	if err := p.conn.Publish(EnrollmentSubject(tournamentID), data); err != nil {
		p.logger.Warn("failed to publish enrollment event", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	}
}
