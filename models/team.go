package models

import "time"

type Team struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"team_name" db:"team_name"`
	Code         string    `json:"-" db:"code"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// EnrolledTeam - команда турнира вместе с текущим числом участников.
type EnrolledTeam struct {
	ID          int    `json:"id"`
	Name        string `json:"team_name"`
	MemberCount int    `json:"member_count"`
}

// TeamRegistration возвращается при создании команды.
type TeamRegistration struct {
	TeamID   int    `json:"team_id"`
	TeamCode string `json:"team_code"`
	Ticket   string `json:"ticket"`
}
