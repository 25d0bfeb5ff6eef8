//go:build integration

package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/sync/errgroup"

	"github.com/zdenkokanos/MTAA-backend/db"
	"github.com/zdenkokanos/MTAA-backend/models"
	"github.com/zdenkokanos/MTAA-backend/repositories"
)

func setupPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("tournaments"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	conn, err := db.Connect(dsn, 10*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.Migrate(ctx, conn))
	return conn
}

func seedUsers(t *testing.T, conn *sql.DB, n int) []int {
	t.Helper()
	users := repositories.NewPostgresUserRepository(conn)
	ids := make([]int, 0, n)
	for i := range n {
		u := &models.User{
			FirstName:    "Player",
			LastName:     fmt.Sprint(i),
			Email:        fmt.Sprintf("player%d@example.com", i),
			PasswordHash: "x",
		}
		require.NoError(t, users.Create(context.Background(), nil, u))
		ids = append(ids, u.ID)
	}
	return ids
}

func seedCategory(t *testing.T, conn *sql.DB, name string) int {
	t.Helper()
	var id int
	require.NoError(t, conn.QueryRowContext(context.Background(),
		`INSERT INTO sport_category (category_name) VALUES ($1) RETURNING id`, name).Scan(&id))
	return id
}

// seedTournament создаёт турнир с разумными значениями по умолчанию; date == nil оставляет NULL.
func seedTournament(t *testing.T, repo repositories.TournamentRepository, ownerID, categoryID int, name string, status models.TournamentStatus, date *time.Time) *models.Tournament {
	t.Helper()
	tour := &models.Tournament{
		OwnerID:      ownerID,
		Name:         name,
		CategoryID:   categoryID,
		LocationName: "Bratislava",
		Latitude:     48.14,
		Longitude:    17.10,
		Level:        "Amateur",
		MaxTeamSize:  4,
		GameSetting:  "Outdoor",
		IsPublic:     true,
		Status:       status,
		Date:         date,
	}
	require.NoError(t, repo.Create(context.Background(), tour))
	return tour
}

func TestJoinTeamCapacityPostgres(t *testing.T) {
	conn := setupPostgres(t)
	ctx := context.Background()

	const maxSize = 4
	const joiners = 10
	userIDs := seedUsers(t, conn, joiners+1)

	categoryID := seedCategory(t, conn, "Volleyball")

	tournaments := repositories.NewPostgresTournamentRepository(conn)
	date := time.Now().Add(48 * time.Hour)
	tour := seedTournament(t, tournaments, userIDs[0], categoryID, "Beach Open", models.StatusUpcoming, &date)
	require.Equal(t, maxSize, tour.MaxTeamSize)

	svc := NewTeamService(
		repositories.NewPostgresTransactor(conn),
		tournaments,
		repositories.NewPostgresTeamRepository(conn),
		repositories.NewPostgresMembershipRepository(conn),
		nil, nil, nil, discardLogger(),
	)

	reg, err := svc.CreateTeam(ctx, tour.ID, "Sandstorm", userIDs[0])
	require.NoError(t, err)

	var (
		mu        sync.Mutex
		succeeded int
		full      int
	)
	var g errgroup.Group
	for _, uid := range userIDs[1:] {
		g.Go(func() error {
			_, err := svc.JoinTeam(ctx, tour.ID, reg.TeamCode, uid)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, ErrTeamFull):
				full++
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, maxSize-1, succeeded)
	assert.Equal(t, joiners-(maxSize-1), full)

	var members int
	require.NoError(t, conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM team_members WHERE team_id = $1`, reg.TeamID).Scan(&members))
	assert.Equal(t, maxSize, members)

	membership, err := svc.CheckTicket(ctx, tour.ID, tour.OwnerID, reg.Ticket)
	require.NoError(t, err)
	assert.Equal(t, userIDs[0], membership.UserID)
}

func TestRecommendationsExcludeIneligiblePostgres(t *testing.T) {
	conn := setupPostgres(t)
	ctx := context.Background()

	userIDs := seedUsers(t, conn, 2)
	viewer, organiser := userIDs[0], userIDs[1]

	users := repositories.NewPostgresUserRepository(conn)
	favourite := seedCategory(t, conn, "Volleyball")
	other := seedCategory(t, conn, "Chess")
	lat, lon := 48.15, 17.11
	require.NoError(t, users.UpdatePreferences(ctx, nil, viewer, nil, &lat, &lon))
	require.NoError(t, users.SetPreferredCategories(ctx, nil, viewer, []int{favourite}))
	require.NoError(t, users.UpdatePreferences(ctx, nil, organiser, nil, &lat, &lon))
	require.NoError(t, users.SetPreferredCategories(ctx, nil, organiser, []int{favourite}))

	tournaments := repositories.NewPostgresTournamentRepository(conn)
	future := time.Now().Add(48 * time.Hour)
	past := time.Now().Add(-48 * time.Hour)

	valid := seedTournament(t, tournaments, organiser, favourite, "Open Cup", models.StatusUpcoming, &future)
	owned := seedTournament(t, tournaments, viewer, favourite, "Own Cup", models.StatusUpcoming, &future)
	enrolled := seedTournament(t, tournaments, organiser, favourite, "Enrolled Cup", models.StatusUpcoming, &future)
	seedTournament(t, tournaments, organiser, favourite, "Closed Cup", models.StatusClosed, &future)
	seedTournament(t, tournaments, organiser, favourite, "Past Cup", models.StatusUpcoming, &past)
	seedTournament(t, tournaments, organiser, favourite, "Undated Cup", models.StatusUpcoming, nil)
	seedTournament(t, tournaments, organiser, other, "Chess Cup", models.StatusUpcoming, &future)

	registry := NewTeamService(
		repositories.NewPostgresTransactor(conn),
		tournaments,
		repositories.NewPostgresTeamRepository(conn),
		repositories.NewPostgresMembershipRepository(conn),
		nil, nil, nil, discardLogger(),
	)
	_, err := registry.CreateTeam(ctx, enrolled.ID, "Viewers", viewer)
	require.NoError(t, err)

	svc := NewRecommendationService(users, tournaments, nil, discardLogger())
	got, err := svc.GetRecommendations(ctx, viewer)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, valid.ID, got[0].ID)
	assert.Equal(t, "Volleyball", got[0].CategoryName)
	assert.Less(t, got[0].DistanceKm, 5.0)

	// организатору из всех турниров подходит только чужой
	others, err := svc.GetRecommendations(ctx, organiser)
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, owned.ID, others[0].ID)
}

func TestLeaderboardMovePostgres(t *testing.T) {
	conn := setupPostgres(t)
	ctx := context.Background()

	userIDs := seedUsers(t, conn, 3)
	owner := userIDs[0]
	tournaments := repositories.NewPostgresTournamentRepository(conn)
	date := time.Now().Add(48 * time.Hour)
	tour := seedTournament(t, tournaments, owner, seedCategory(t, conn, "Volleyball"), "League", models.StatusUpcoming, &date)

	tx := repositories.NewPostgresTransactor(conn)
	teamRepo := repositories.NewPostgresTeamRepository(conn)
	registry := NewTeamService(tx, tournaments, teamRepo,
		repositories.NewPostgresMembershipRepository(conn), nil, nil, nil, discardLogger())
	first, err := registry.CreateTeam(ctx, tour.ID, "First", userIDs[1])
	require.NoError(t, err)
	second, err := registry.CreateTeam(ctx, tour.ID, "Second", userIDs[2])
	require.NoError(t, err)

	leaderboard := repositories.NewPostgresLeaderboardRepository(conn)
	svc := NewTournamentService(tx, tournaments, nil, teamRepo, leaderboard, nil, discardLogger())
	require.NoError(t, svc.StartTournament(ctx, tour.ID, owner))

	require.NoError(t, svc.SetLeaderboardPosition(ctx, tour.ID, owner, first.TeamID, 2))
	require.NoError(t, svc.SetLeaderboardPosition(ctx, tour.ID, owner, second.TeamID, 1))
	require.NoError(t, svc.SetLeaderboardPosition(ctx, tour.ID, owner, first.TeamID, 3))
	require.NoError(t, svc.SetLeaderboardPosition(ctx, tour.ID, owner, second.TeamID, 3))

	entries, err := leaderboard.ListByTournament(ctx, tour.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, second.TeamID, entries[0].TeamID)
	assert.Equal(t, 3, entries[0].Position)
}
