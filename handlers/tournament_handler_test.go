package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zdenkokanos/MTAA-backend/middleware"
	"github.com/zdenkokanos/MTAA-backend/models"
	"github.com/zdenkokanos/MTAA-backend/services"
)

func newTournamentRouter(ts services.TournamentService) http.Handler {
	h := NewTournamentHandler(ts)
	r := chi.NewRouter()
	r.Put("/tournaments/{id}/start", h.StartTournament)
	r.Post("/tournaments/{id}/leaderboard", h.SetLeaderboardPosition)
	r.Post("/tournaments/{id}/image", h.UploadImage)
	return r
}

func TestTournamentHandler_StartTournament(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "started", want: http.StatusOK},
		{name: "not owner", err: services.ErrNotTournamentOwner, want: http.StatusForbidden},
		{name: "wrong status", err: services.ErrInvalidStatusChange, want: http.StatusConflict},
		{name: "missing", err: services.ErrTournamentNotFound, want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := &fakeTournamentService{
				StartTournamentFunc: func(ctx context.Context, id, callerID int) error {
					assert.Equal(t, 3, id)
					assert.Equal(t, 8, callerID)
					return tt.err
				},
			}
			rec := doRequest(t, newTournamentRouter(ts), http.MethodPut, "/tournaments/3/start", "", 8)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestTournamentHandler_SetLeaderboardPosition(t *testing.T) {
	ts := &fakeTournamentService{
		SetLeaderboardPositionFunc: func(ctx context.Context, tournamentID, callerID, teamID, position int) error {
			assert.Equal(t, 2, teamID)
			if position < 1 {
				return services.ErrInvalidPosition
			}
			return nil
		},
	}
	router := newTournamentRouter(ts)

	rec := doRequest(t, router, http.MethodPost, "/tournaments/1/leaderboard", `{"team_id":2,"position":1}`, 4)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/tournaments/1/leaderboard", `{"team_id":2,"position":0}`, 4)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTournamentHandler_UploadImage(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="cover.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	ts := &fakeTournamentService{
		UploadImageFunc: func(ctx context.Context, id, callerID int, file io.Reader, contentType string) (*models.Tournament, error) {
			data, err := io.ReadAll(file)
			require.NoError(t, err)
			assert.Equal(t, "png-bytes", string(data))
			assert.Equal(t, "image/png", contentType)
			return &models.Tournament{ID: id, OwnerID: callerID}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/tournaments/6/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(middleware.WithUserID(req.Context(), 1))
	rec := httptest.NewRecorder()
	newTournamentRouter(ts).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTournamentHandler_UploadImageWithoutFile(t *testing.T) {
	ts := &fakeTournamentService{}
	req := httptest.NewRequest(http.MethodPost, "/tournaments/6/image", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), 1))
	rec := httptest.NewRecorder()
	newTournamentRouter(ts).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
