package models

import "time"

// TeamMembership - запись участия пользователя в команде; ticket служит билетом на вход.
type TeamMembership struct {
	ID           int       `json:"id" db:"id"`
	UserID       int       `json:"user_id" db:"user_id"`
	TeamID       int       `json:"team_id" db:"team_id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Ticket       string    `json:"ticket" db:"ticket"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// UserTicket - билет пользователя с данными турнира для списка "мои билеты".
type UserTicket struct {
	MembershipID   int        `json:"id"`
	TournamentID   int        `json:"tournament_id"`
	TournamentName string     `json:"tournament_name"`
	TeamID         int        `json:"team_id"`
	TeamName       string     `json:"team_name"`
	Ticket         string     `json:"ticket"`
	Date           *time.Time `json:"date,omitempty"`
}
