package services

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/zdenkokanos/MTAA-backend/models"
	"github.com/zdenkokanos/MTAA-backend/repositories"
)

// memStore - хранилище реестра в памяти. Транзакции сериализуются через txMu,
// что соответствует блокировке строки команды в Postgres.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	tournaments map[int]models.Tournament
	teams       map[int]models.Team
	memberships map[int]models.TeamMembership
	nextID      int

	// err возвращается всеми методами, если задан.
	err error
}

func newMemStore() *memStore {
	return &memStore{
		tournaments: make(map[int]models.Tournament),
		teams:       make(map[int]models.Team),
		memberships: make(map[int]models.TeamMembership),
		nextID:      100,
	}
}

func (s *memStore) addTournament(t models.Tournament) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tournaments[t.ID] = t
}

func (s *memStore) memberCount(teamID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.memberships {
		if m.TeamID == teamID {
			n++
		}
	}
	return n
}

type memSnapshot struct {
	teams       map[int]models.Team
	memberships map[int]models.TeamMembership
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		teams:       make(map[int]models.Team, len(s.teams)),
		memberships: make(map[int]models.TeamMembership, len(s.memberships)),
	}
	for k, v := range s.teams {
		snap.teams[k] = v
	}
	for k, v := range s.memberships {
		snap.memberships[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams = snap.teams
	s.memberships = snap.memberships
}

type memTransactor struct{ store *memStore }

func (t memTransactor) WithinTx(ctx context.Context, _ *sql.TxOptions, fn func(exec repositories.SQLExecutor) error) error {
	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()
	snap := t.store.snapshot()
	if err := fn(nil); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

type memTournaments struct {
	repositories.TournamentRepository
	store *memStore
}

func (r memTournaments) GetByID(ctx context.Context, _ repositories.SQLExecutor, id int) (*models.Tournament, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.err != nil {
		return nil, r.store.err
	}
	t, ok := r.store.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &t, nil
}

type memTeams struct{ store *memStore }

func (r memTeams) Create(ctx context.Context, _ repositories.SQLExecutor, team *models.Team) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.err != nil {
		return r.store.err
	}
	if _, ok := r.store.tournaments[team.TournamentID]; !ok {
		return repositories.ErrTeamTournamentInvalid
	}
	for _, existing := range r.store.teams {
		if existing.TournamentID != team.TournamentID {
			continue
		}
		if existing.Code == team.Code {
			return repositories.ErrTeamCodeConflict
		}
		if existing.Name == team.Name {
			return repositories.ErrTeamNameConflict
		}
	}
	r.store.nextID++
	team.ID = r.store.nextID
	team.CreatedAt = time.Now()
	r.store.teams[team.ID] = *team
	return nil
}

func (r memTeams) GetByID(ctx context.Context, _ repositories.SQLExecutor, id int) (*models.Team, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.err != nil {
		return nil, r.store.err
	}
	team, ok := r.store.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	return &team, nil
}

func (r memTeams) FindByCode(ctx context.Context, _ repositories.SQLExecutor, tournamentID int, code string, _ bool) (*models.Team, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.err != nil {
		return nil, r.store.err
	}
	for _, team := range r.store.teams {
		if team.TournamentID == tournamentID && team.Code == code {
			return &team, nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (r memTeams) ListByTournament(ctx context.Context, tournamentID int) ([]models.EnrolledTeam, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.err != nil {
		return nil, r.store.err
	}
	var out []models.EnrolledTeam
	for _, team := range r.store.teams {
		if team.TournamentID != tournamentID {
			continue
		}
		n := 0
		for _, m := range r.store.memberships {
			if m.TeamID == team.ID {
				n++
			}
		}
		out = append(out, models.EnrolledTeam{ID: team.ID, Name: team.Name, MemberCount: n})
	}
	return out, nil
}

func (r memTeams) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	teams, err := r.ListByTournament(ctx, tournamentID)
	return len(teams), err
}

type memMemberships struct{ store *memStore }

func (r memMemberships) Create(ctx context.Context, _ repositories.SQLExecutor, m *models.TeamMembership) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.err != nil {
		return r.store.err
	}
	for _, existing := range r.store.memberships {
		if existing.Ticket == m.Ticket {
			return repositories.ErrMembershipTicketConflict
		}
		if existing.TournamentID == m.TournamentID && existing.UserID == m.UserID {
			return repositories.ErrMembershipAlreadyExists
		}
	}
	r.store.nextID++
	m.ID = r.store.nextID
	m.CreatedAt = time.Now()
	r.store.memberships[m.ID] = *m
	return nil
}

func (r memMemberships) CountByTeam(ctx context.Context, _ repositories.SQLExecutor, teamID int) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.err != nil {
		return 0, r.store.err
	}
	n := 0
	for _, m := range r.store.memberships {
		if m.TeamID == teamID {
			n++
		}
	}
	return n, nil
}

func (r memMemberships) FindByTicket(ctx context.Context, tournamentID int, ticket string) (*models.TeamMembership, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.err != nil {
		return nil, r.store.err
	}
	for _, m := range r.store.memberships {
		if m.TournamentID == tournamentID && m.Ticket == ticket {
			return &m, nil
		}
	}
	return nil, repositories.ErrMembershipNotFound
}

func (r memMemberships) ListTicketsByUser(ctx context.Context, userID int) ([]models.UserTicket, error) {
	return nil, nil
}

// sequenceCodes выдаёт предсказуемые коды: J0000001, J0000002 ... и T00000000001 ...
type sequenceCodes struct {
	mu      sync.Mutex
	joins   int
	tickets int
	// fixedJoin, если задан, возвращается всегда.
	fixedJoin string
}

func (g *sequenceCodes) JoinCode() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fixedJoin != "" {
		return g.fixedJoin, nil
	}
	g.joins++
	return fmtCode("J", 8, g.joins), nil
}

func (g *sequenceCodes) Ticket() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tickets++
	return fmtCode("T", 12, g.tickets), nil
}

func fmtCode(prefix string, width, n int) string {
	digits := make([]byte, width-len(prefix))
	for i := len(digits) - 1; i >= 0; i-- {
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return prefix + string(digits)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []int
}

func (n *recordingNotifier) EmitEnrollmentChanged(tournamentID int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, tournamentID)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

// passthroughTx вызывает fn без транзакции.
type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, _ *sql.TxOptions, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeUserRepo struct {
	repositories.UserRepository
	CreateFunc                   func(ctx context.Context, user *models.User) error
	GetByIDFunc                  func(ctx context.Context, id int) (*models.User, error)
	GetByEmailFunc               func(ctx context.Context, email string) (*models.User, error)
	UpdatePasswordFunc           func(ctx context.Context, id int, hash string) error
	UpdatePreferencesFunc        func(ctx context.Context, id int, location *string, lat, lon *float64) error
	SetPreferredCategoriesFunc   func(ctx context.Context, id int, categoryIDs []int) error
	GetCoordinatesFunc           func(ctx context.Context, id int) (models.Coordinates, error)
	ListPreferredCategoryIDsFunc func(ctx context.Context, id int) ([]int, error)
}

func (f *fakeUserRepo) Create(ctx context.Context, _ repositories.SQLExecutor, user *models.User) error {
	return f.CreateFunc(ctx, user)
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	return f.GetByIDFunc(ctx, id)
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.GetByEmailFunc(ctx, email)
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id int, hash string) error {
	return f.UpdatePasswordFunc(ctx, id, hash)
}

func (f *fakeUserRepo) UpdatePreferences(ctx context.Context, _ repositories.SQLExecutor, id int, location *string, lat, lon *float64) error {
	return f.UpdatePreferencesFunc(ctx, id, location, lat, lon)
}

func (f *fakeUserRepo) SetPreferredCategories(ctx context.Context, _ repositories.SQLExecutor, id int, categoryIDs []int) error {
	return f.SetPreferredCategoriesFunc(ctx, id, categoryIDs)
}

func (f *fakeUserRepo) GetCoordinates(ctx context.Context, id int) (models.Coordinates, error) {
	return f.GetCoordinatesFunc(ctx, id)
}

func (f *fakeUserRepo) ListPreferredCategoryIDs(ctx context.Context, id int) ([]int, error) {
	return f.ListPreferredCategoryIDsFunc(ctx, id)
}

type fakeTournamentRepo struct {
	repositories.TournamentRepository
	CreateFunc              func(ctx context.Context, t *models.Tournament) error
	GetByIDFunc             func(ctx context.Context, id int) (*models.Tournament, error)
	UpdateFunc              func(ctx context.Context, t *models.Tournament) error
	UpdateStatusFunc        func(ctx context.Context, id int, from, to models.TournamentStatus) error
	ListCandidatesFunc      func(ctx context.Context, userID int, categoryIDs []int) ([]models.TournamentSummary, error)
	ListStartingBetweenFunc func(ctx context.Context, from, to time.Time) ([]models.Tournament, error)
}

func (f *fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	return f.CreateFunc(ctx, t)
}

func (f *fakeTournamentRepo) GetByID(ctx context.Context, _ repositories.SQLExecutor, id int) (*models.Tournament, error) {
	return f.GetByIDFunc(ctx, id)
}

func (f *fakeTournamentRepo) Update(ctx context.Context, t *models.Tournament) error {
	return f.UpdateFunc(ctx, t)
}

func (f *fakeTournamentRepo) UpdateStatus(ctx context.Context, _ repositories.SQLExecutor, id int, from, to models.TournamentStatus) error {
	return f.UpdateStatusFunc(ctx, id, from, to)
}

func (f *fakeTournamentRepo) ListCandidates(ctx context.Context, userID int, categoryIDs []int) ([]models.TournamentSummary, error) {
	return f.ListCandidatesFunc(ctx, userID, categoryIDs)
}

func (f *fakeTournamentRepo) ListStartingBetween(ctx context.Context, from, to time.Time) ([]models.Tournament, error) {
	return f.ListStartingBetweenFunc(ctx, from, to)
}

type fakeLeaderboardRepo struct {
	repositories.LeaderboardRepository
	UpsertFunc    func(ctx context.Context, entry *models.LeaderboardEntry) error
	ClearTeamFunc func(ctx context.Context, tournamentID, teamID int) error
	RemoveFunc    func(ctx context.Context, tournamentID, teamID int) error
}

func (f *fakeLeaderboardRepo) ClearTeam(ctx context.Context, _ repositories.SQLExecutor, tournamentID, teamID int) error {
	if f.ClearTeamFunc == nil {
		return nil
	}
	return f.ClearTeamFunc(ctx, tournamentID, teamID)
}

func (f *fakeLeaderboardRepo) Upsert(ctx context.Context, _ repositories.SQLExecutor, entry *models.LeaderboardEntry) error {
	return f.UpsertFunc(ctx, entry)
}

func (f *fakeLeaderboardRepo) Remove(ctx context.Context, tournamentID, teamID int) error {
	return f.RemoveFunc(ctx, tournamentID, teamID)
}

type fakePushTokenRepo struct {
	SaveFunc                        func(ctx context.Context, token *models.PushToken) error
	ListRecipientsForTournamentFunc func(ctx context.Context, tournamentID int) ([]models.PushRecipient, error)
}

func (f *fakePushTokenRepo) Save(ctx context.Context, token *models.PushToken) error {
	return f.SaveFunc(ctx, token)
}

func (f *fakePushTokenRepo) ListRecipientsForTournament(ctx context.Context, tournamentID int) ([]models.PushRecipient, error) {
	return f.ListRecipientsForTournamentFunc(ctx, tournamentID)
}
