package handlers

import (
	"context"
	"io"

	"github.com/zdenkokanos/MTAA-backend/models"
	"github.com/zdenkokanos/MTAA-backend/services"
)

type fakeTeamService struct {
	CreateTeamFunc        func(ctx context.Context, tournamentID int, teamName string, userID int) (*models.TeamRegistration, error)
	JoinTeamFunc          func(ctx context.Context, tournamentID int, joinCode string, userID int) (string, error)
	CheckTicketFunc       func(ctx context.Context, tournamentID, callerID int, ticket string) (*models.TeamMembership, error)
	ListEnrolledTeamsFunc func(ctx context.Context, tournamentID int) ([]models.EnrolledTeam, error)
	CountTeamsFunc        func(ctx context.Context, tournamentID int) (int, error)
}

func (f *fakeTeamService) CreateTeam(ctx context.Context, tournamentID int, teamName string, userID int) (*models.TeamRegistration, error) {
	return f.CreateTeamFunc(ctx, tournamentID, teamName, userID)
}

func (f *fakeTeamService) JoinTeam(ctx context.Context, tournamentID int, joinCode string, userID int) (string, error) {
	return f.JoinTeamFunc(ctx, tournamentID, joinCode, userID)
}

func (f *fakeTeamService) CheckTicket(ctx context.Context, tournamentID, callerID int, ticket string) (*models.TeamMembership, error) {
	return f.CheckTicketFunc(ctx, tournamentID, callerID, ticket)
}

func (f *fakeTeamService) ListEnrolledTeams(ctx context.Context, tournamentID int) ([]models.EnrolledTeam, error) {
	return f.ListEnrolledTeamsFunc(ctx, tournamentID)
}

func (f *fakeTeamService) CountTeams(ctx context.Context, tournamentID int) (int, error) {
	return f.CountTeamsFunc(ctx, tournamentID)
}

type fakeRecommendationService struct {
	GetRecommendationsFunc func(ctx context.Context, userID int) ([]models.RecommendedTournament, error)
}

func (f *fakeRecommendationService) GetRecommendations(ctx context.Context, userID int) ([]models.RecommendedTournament, error) {
	return f.GetRecommendationsFunc(ctx, userID)
}

type fakeTournamentService struct {
	services.TournamentService
	StartTournamentFunc        func(ctx context.Context, id, callerID int) error
	SetLeaderboardPositionFunc func(ctx context.Context, tournamentID, callerID, teamID, position int) error
	UploadImageFunc            func(ctx context.Context, id, callerID int, file io.Reader, contentType string) (*models.Tournament, error)
}

func (f *fakeTournamentService) StartTournament(ctx context.Context, id, callerID int) error {
	return f.StartTournamentFunc(ctx, id, callerID)
}

func (f *fakeTournamentService) SetLeaderboardPosition(ctx context.Context, tournamentID, callerID, teamID, position int) error {
	return f.SetLeaderboardPositionFunc(ctx, tournamentID, callerID, teamID, position)
}

func (f *fakeTournamentService) UploadImage(ctx context.Context, id, callerID int, file io.Reader, contentType string) (*models.Tournament, error) {
	return f.UploadImageFunc(ctx, id, callerID, file, contentType)
}
