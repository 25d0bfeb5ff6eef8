package models

import "time"

// TournamentStatus соответствует CHECK-ограничению в таблице tournaments.
type TournamentStatus string

const (
	StatusUpcoming TournamentStatus = "Upcoming"
	StatusOngoing  TournamentStatus = "Ongoing"
	StatusClosed   TournamentStatus = "Closed"
)

// Tournament представляет турнир.
type Tournament struct {
	ID               int              `json:"id" db:"id"`
	OwnerID          int              `json:"owner_id" db:"owner_id"`
	Name             string           `json:"tournament_name" db:"tournament_name"`
	CategoryID       int              `json:"category_id" db:"category_id"`
	LocationName     string           `json:"location_name" db:"location_name"`
	Latitude         float64          `json:"latitude" db:"latitude"`
	Longitude        float64          `json:"longitude" db:"longitude"`
	Level            string           `json:"level" db:"level"`
	MaxTeamSize      int              `json:"max_team_size" db:"max_team_size"`
	GameSetting      string           `json:"game_setting" db:"game_setting"`
	EntryFee         float64          `json:"entry_fee" db:"entry_fee"`
	PrizeDescription *string          `json:"prize_description,omitempty" db:"prize_description"`
	IsPublic         bool             `json:"is_public" db:"is_public"`
	AdditionalInfo   *string          `json:"additional_info,omitempty" db:"additional_info"`
	Status           TournamentStatus `json:"status" db:"status"`
	Date             *time.Time       `json:"date,omitempty" db:"date"`
	ImageKey         *string          `json:"-" db:"image_key"`
	ImageURL         *string          `json:"image_url,omitempty" db:"-"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`

	CategoryName string `json:"category_name,omitempty" db:"-"`
}

// Coordinates - точка на сфере в градусах.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// TournamentSummary - сокращённое представление турнира для списков и рекомендаций.
type TournamentSummary struct {
	ID           int              `json:"id"`
	Name         string           `json:"tournament_name"`
	CategoryID   int              `json:"category_id"`
	CategoryName string           `json:"category_name"`
	LocationName string           `json:"location_name"`
	Latitude     float64          `json:"latitude"`
	Longitude    float64          `json:"longitude"`
	Level        string           `json:"level"`
	Status       TournamentStatus `json:"status"`
	Date         *time.Time       `json:"date,omitempty"`
}

// RecommendedTournament - кандидат с рассчитанным расстоянием до пользователя.
type RecommendedTournament struct {
	TournamentSummary
	DistanceKm float64 `json:"distance_km"`
}
