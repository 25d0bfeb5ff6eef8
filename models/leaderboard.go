package models

type LeaderboardEntry struct {
	TournamentID int    `json:"tournament_id" db:"tournament_id"`
	TeamID       int    `json:"team_id" db:"team_id"`
	Position     int    `json:"position" db:"position"`
	TeamName     string `json:"team_name,omitempty" db:"-"`
}
