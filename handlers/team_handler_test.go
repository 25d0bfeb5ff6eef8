package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zdenkokanos/MTAA-backend/middleware"
	"github.com/zdenkokanos/MTAA-backend/models"
	"github.com/zdenkokanos/MTAA-backend/services"
)

func newTeamRouter(ts services.TeamService) http.Handler {
	h := NewTeamHandler(ts)
	r := chi.NewRouter()
	r.Post("/tournaments/{id}/register", h.CreateTeam)
	r.Post("/tournaments/{id}/join_team", h.JoinTeam)
	r.Post("/tournaments/{id}/check-tickets", h.CheckTicket)
	r.Get("/tournaments/{id}/enrolled", h.ListEnrolledTeams)
	r.Get("/tournaments/{id}/teams/count", h.CountTeams)
	return r
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string, userID int) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID > 0 {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestTeamHandler_CreateTeam(t *testing.T) {
	var gotTournament, gotUser int
	var gotName string
	ts := &fakeTeamService{
		CreateTeamFunc: func(ctx context.Context, tournamentID int, teamName string, userID int) (*models.TeamRegistration, error) {
			gotTournament, gotName, gotUser = tournamentID, teamName, userID
			return &models.TeamRegistration{TeamID: 3, TeamCode: "A1B2C3D4", Ticket: "0123456789AB"}, nil
		},
	}

	rec := doRequest(t, newTeamRouter(ts), http.MethodPost, "/tournaments/5/register", `{"team_name":"Falcons"}`, 9)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "A1B2C3D4", body["team_code"])
	assert.Equal(t, "0123456789AB", body["ticket"])
	assert.Equal(t, 5, gotTournament)
	assert.Equal(t, "Falcons", gotName)
	assert.Equal(t, 9, gotUser)
}

func TestTeamHandler_CreateTeamRejectsBadInput(t *testing.T) {
	ts := &fakeTeamService{
		CreateTeamFunc: func(context.Context, int, string, int) (*models.TeamRegistration, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	router := newTeamRouter(ts)

	tests := []struct {
		name   string
		path   string
		body   string
		userID int
		want   int
	}{
		{name: "bad tournament id", path: "/tournaments/x/register", body: `{"team_name":"A"}`, userID: 1, want: http.StatusBadRequest},
		{name: "malformed json", path: "/tournaments/1/register", body: `{"team_name":`, userID: 1, want: http.StatusBadRequest},
		{name: "unknown field", path: "/tournaments/1/register", body: `{"name":"A"}`, userID: 1, want: http.StatusBadRequest},
		{name: "no user", path: "/tournaments/1/register", body: `{"team_name":"A"}`, want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, tt.path, tt.body, tt.userID)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestTeamHandler_JoinTeamErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "team full", err: services.ErrTeamFull, want: http.StatusBadRequest},
		{name: "unknown code", err: services.ErrTeamNotFound, want: http.StatusNotFound},
		{name: "already enrolled", err: services.ErrAlreadyEnrolled, want: http.StatusConflict},
		{name: "storage down", err: fmt.Errorf("join: %w: %v", services.ErrUnavailable, errors.New("dial tcp")), want: http.StatusServiceUnavailable},
		{name: "unexpected", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := &fakeTeamService{
				JoinTeamFunc: func(context.Context, int, string, int) (string, error) {
					return "", tt.err
				},
			}
			rec := doRequest(t, newTeamRouter(ts), http.MethodPost, "/tournaments/1/join_team", `{"code":"a1b2c3d4"}`, 2)
			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, decodeBody(t, rec), "error")
		})
	}
}

func TestTeamHandler_JoinTeam(t *testing.T) {
	ts := &fakeTeamService{
		JoinTeamFunc: func(ctx context.Context, tournamentID int, joinCode string, userID int) (string, error) {
			assert.Equal(t, "a1b2c3d4", joinCode)
			return "FFEEDDCCBBAA", nil
		},
	}
	rec := doRequest(t, newTeamRouter(ts), http.MethodPost, "/tournaments/1/join_team", `{"code":"a1b2c3d4"}`, 2)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "FFEEDDCCBBAA", decodeBody(t, rec)["ticket"])
}

func TestTeamHandler_CheckTicket(t *testing.T) {
	const ownerID = 5
	ts := &fakeTeamService{
		CheckTicketFunc: func(ctx context.Context, tournamentID, callerID int, ticket string) (*models.TeamMembership, error) {
			if callerID != ownerID {
				return nil, services.ErrNotTournamentOwner
			}
			if ticket != "0123456789AB" {
				return nil, services.ErrMembershipNotFound
			}
			return &models.TeamMembership{ID: 11, UserID: 60, TeamID: 14, TournamentID: tournamentID, Ticket: ticket}, nil
		},
	}
	router := newTeamRouter(ts)

	rec := doRequest(t, router, http.MethodPost, "/tournaments/4/check-tickets", `{"ticket":"0123456789AB"}`, ownerID)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 60, body["user_id"])
	assert.EqualValues(t, 4, body["tournament_id"])

	rec = doRequest(t, router, http.MethodPost, "/tournaments/4/check-tickets", `{"ticket":"nope"}`, ownerID)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/tournaments/4/check-tickets", `{"ticket":"0123456789AB"}`, 60)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotContains(t, rec.Body.String(), "user_id")
}

func TestTeamHandler_EnrolledAndCount(t *testing.T) {
	ts := &fakeTeamService{
		ListEnrolledTeamsFunc: func(context.Context, int) ([]models.EnrolledTeam, error) {
			return []models.EnrolledTeam{{ID: 1, Name: "A", MemberCount: 3}}, nil
		},
		CountTeamsFunc: func(context.Context, int) (int, error) { return 7, nil },
	}
	router := newTeamRouter(ts)

	rec := doRequest(t, router, http.MethodGet, "/tournaments/1/enrolled", "", 1)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["teams"], 1)

	rec = doRequest(t, router, http.MethodGet, "/tournaments/1/teams/count", "", 1)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 7, decodeBody(t, rec)["team_count"])
}
