package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/zdenkokanos/MTAA-backend/metrics"
	"github.com/zdenkokanos/MTAA-backend/models"
	"github.com/zdenkokanos/MTAA-backend/repositories"
)

const maxRecommendations = 5

type RecommendationService interface {
	GetRecommendations(ctx context.Context, userID int) ([]models.RecommendedTournament, error)
}

type recommendationService struct {
	userRepo       repositories.UserRepository
	tournamentRepo repositories.TournamentRepository
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

func NewRecommendationService(
	userRepo repositories.UserRepository,
	tournamentRepo repositories.TournamentRepository,
	m *metrics.Metrics,
	logger *slog.Logger,
) RecommendationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &recommendationService{
		userRepo:       userRepo,
		tournamentRepo: tournamentRepo,
		metrics:        m,
		logger:         logger,
	}
}

// GetRecommendations возвращает до пяти ближайших к пользователю предстоящих турниров
// из его любимых категорий, упорядоченных по дате.
func (s *recommendationService) GetRecommendations(ctx context.Context, userID int) ([]models.RecommendedTournament, error) {
	origin, err := s.userRepo.GetCoordinates(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		err = unavailable("load user coordinates", err)
		logOutcome(ctx, s.logger, "recommendations failed", err, slog.Int("user_id", userID))
		return nil, err
	}

	categoryIDs, err := s.userRepo.ListPreferredCategoryIDs(ctx, userID)
	if err != nil {
		err = unavailable("load preferred categories", err)
		logOutcome(ctx, s.logger, "recommendations failed", err, slog.Int("user_id", userID))
		return nil, err
	}
	if len(categoryIDs) == 0 {
		s.metrics.RecommendationServed()
		return []models.RecommendedTournament{}, nil
	}

	candidates, err := s.tournamentRepo.ListCandidates(ctx, userID, categoryIDs)
	if err != nil {
		err = unavailable("load candidate tournaments", err)
		logOutcome(ctx, s.logger, "recommendations failed", err, slog.Int("user_id", userID))
		return nil, err
	}

	result := rankByDistance(origin, candidates)
	s.metrics.RecommendationServed()
	return result, nil
}

// rankByDistance отбирает пять ближайших кандидатов с датой и сортирует их по дате.
func rankByDistance(origin models.Coordinates, candidates []models.TournamentSummary) []models.RecommendedTournament {
	ranked := make([]models.RecommendedTournament, 0, len(candidates))
	for _, c := range candidates {
		if c.Date == nil {
			continue
		}
		ranked = append(ranked, models.RecommendedTournament{
			TournamentSummary: c,
			DistanceKm:        haversineKm(origin, models.Coordinates{Latitude: c.Latitude, Longitude: c.Longitude}),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})
	if len(ranked) > maxRecommendations {
		ranked = ranked[:maxRecommendations]
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Date.Before(*ranked[j].Date)
	})
	return ranked
}
