package handlers

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-engine/middleware"
	"github.com/Dosada05/tournament-engine/repositories/memory"
	"github.com/Dosada05/tournament-engine/services"
)

const organizerID = 1

// testRouter собирает обработчики поверх in-memory сервисов.
// Пользователь берётся из заголовка X-User-ID, без JWT.
func testRouter(t *testing.T) http.Handler {
	t.Helper()
	svc := services.NewServices(services.Dependencies{
		Tournaments:      memory.NewTournamentRepository(),
		RoundDefinitions: memory.NewRoundDefinitionRepository(),
		Participants:     memory.NewParticipantRepository(),
		Matches:          memory.NewMatchRepository(),
		Standings:        memory.NewTournamentStandingRepository(),
		Tx:               memory.NewTxManager(),
		NewRand:          func() *rand.Rand { return rand.New(rand.NewSource(7)) },
	})

	th := NewTournamentHandler(svc.Tournaments)
	rh := NewRoundHandler(svc.Pairings, svc.Rounds)
	mh := NewMatchHandler(svc.Rounds)
	ph := NewParticipantHandler(svc.Participants)
	dh := NewRoundDefinitionHandler(svc.RoundDefinitions)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if id, err := strconv.Atoi(req.Header.Get("X-User-ID")); err == nil {
				req = req.WithContext(middleware.WithUserID(req.Context(), id))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Post("/tournaments", th.CreateHandler)
	r.Get("/tournaments/{tournamentID}", th.GetByIDHandler)
	r.Post("/tournaments/{tournamentID}/activate", th.ActivateHandler)
	r.Post("/tournaments/{tournamentID}/complete", th.CompleteHandler)
	r.Get("/tournaments/{tournamentID}/podium", th.PodiumHandler)
	r.Post("/tournaments/{tournamentID}/participants", ph.RegisterHandler)
	r.Post("/tournaments/{tournamentID}/participants/{userID}/confirm", ph.ConfirmHandler)
	r.Get("/tournaments/{tournamentID}/participants/stats", ph.StatsHandler)
	r.Get("/tournaments/{tournamentID}/round-definitions/{roundNumber}", dh.GetHandler)
	r.Put("/tournaments/{tournamentID}/round-definitions/{roundNumber}", dh.UpdateHandler)
	r.Post("/tournaments/{tournamentID}/rounds/start-first", rh.StartFirstHandler)
	r.Post("/tournaments/{tournamentID}/rounds/start-next", rh.StartNextHandler)
	r.Post("/tournaments/{tournamentID}/rounds/{roundNumber}/start", rh.StartRoundHandler)
	r.Post("/tournaments/{tournamentID}/rounds/{roundNumber}/extend", rh.ExtendHandler)
	r.Get("/tournaments/{tournamentID}/rounds/all", rh.AllRoundsHandler)
	r.Get("/tournaments/{tournamentID}/rounds/{roundNumber}/organizer-status", rh.OrganizerStatusHandler)
	r.Post("/tournaments/{tournamentID}/matches/{matchID}/result", mh.SubmitResultHandler)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, userID int, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID > 0 {
		req.Header.Set("X-User-ID", strconv.Itoa(userID))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, key string, dst interface{}) {
	t.Helper()
	var env map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	raw, ok := env[key]
	require.Truef(t, ok, "response has no %q: %s", key, rec.Body.String())
	require.NoError(t, json.Unmarshal(raw, dst))
}

// decodeBody читает ответ без обертки.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func createTournament(t *testing.T, h http.Handler, players ...int) int {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/tournaments", organizerID, map[string]interface{}{
		"name":                 "Club Night",
		"numberOfRounds":       2,
		"roundDurationMinutes": 60,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var tour struct {
		ID int `json:"id"`
	}
	decode(t, rec, "tournament", &tour)
	base := "/tournaments/" + strconv.Itoa(tour.ID)

	for _, userID := range players {
		rec = do(t, h, http.MethodPost, base+"/participants", userID, map[string]interface{}{"name": "user-" + strconv.Itoa(userID)})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		rec = do(t, h, http.MethodPost, base+"/participants/"+strconv.Itoa(userID)+"/confirm", organizerID, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodPost, base+"/activate", organizerID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return tour.ID
}

func TestCreateTournament_RequiresUser(t *testing.T) {
	h := testRouter(t)
	rec := do(t, h, http.MethodPost, "/tournaments", 0, map[string]interface{}{"name": "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateTournament_BadBody(t *testing.T) {
	h := testRouter(t)

	rec := do(t, h, http.MethodPost, "/tournaments", organizerID, map[string]interface{}{"name": "Open", "unknown": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown key")

	rec = do(t, h, http.MethodPost, "/tournaments", organizerID, map[string]interface{}{"name": "Open"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var hints []string
	decode(t, rec, "hints", &hints)
	assert.NotEmpty(t, hints)
}

func TestGetTournament_NotFoundAndBadID(t *testing.T) {
	h := testRouter(t)

	rec := do(t, h, http.MethodGet, "/tournaments/999", 0, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/tournaments/abc", 0, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStartFirst_OnlyOrganizer(t *testing.T) {
	h := testRouter(t)
	id := createTournament(t, h, 101, 102)

	rec := do(t, h, http.MethodPost, "/tournaments/"+strconv.Itoa(id)+"/rounds/start-first", 101, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodPost, "/tournaments/"+strconv.Itoa(id)+"/rounds/start-first", organizerID, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/tournaments/"+strconv.Itoa(id)+"/rounds/start-first", organizerID, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestExtend_RequiresMinutes(t *testing.T) {
	h := testRouter(t)
	id := createTournament(t, h, 101, 102)

	rec := do(t, h, http.MethodPost, "/tournaments/"+strconv.Itoa(id)+"/rounds/1/extend", organizerID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "additionalMinutes")
}

func TestRoundDefinition_UpdateBeforeStart(t *testing.T) {
	h := testRouter(t)
	id := createTournament(t, h, 101, 102)
	path := "/tournaments/" + strconv.Itoa(id) + "/round-definitions/1"

	rec := do(t, h, http.MethodPut, path, organizerID, map[string]interface{}{"primaryMissionName": "Take and Hold"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, path, 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var def struct {
		PrimaryMissionName *string `json:"primaryMissionName"`
	}
	decode(t, rec, "roundDefinition", &def)
	require.NotNil(t, def.PrimaryMissionName)
	assert.Equal(t, "Take and Hold", *def.PrimaryMissionName)

	rec = do(t, h, http.MethodPut, path, organizerID, map[string]interface{}{"tableAssignmentStrategy": "SIDEWAYS"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestFullFlow_TwoPlayers(t *testing.T) {
	h := testRouter(t)
	id := createTournament(t, h, 101, 102)
	base := "/tournaments/" + strconv.Itoa(id)

	for round := 1; round <= 2; round++ {
		path := base + "/rounds/start-first"
		if round > 1 {
			path = base + "/rounds/start-next"
		}
		rec := do(t, h, http.MethodPost, path, organizerID, nil)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var matches []services.MatchPairView
		decode(t, rec, "matches", &matches)
		require.Len(t, matches, 1)

		rec = do(t, h, http.MethodPost, base+"/rounds/"+strconv.Itoa(round)+"/start", organizerID, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		m := matches[0]
		rec = do(t, h, http.MethodPost, base+"/matches/"+strconv.Itoa(m.MatchID)+"/result", organizerID,
			map[string]int{"player1Score": 20, "player2Score": 5})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = do(t, h, http.MethodGet, base+"/rounds/"+strconv.Itoa(round)+"/organizer-status", 0, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var status services.RoundStatusView
		decodeBody(t, rec, &status)
		assert.True(t, status.AllScoresSubmitted)
		assert.Equal(t, 1, status.CompletedMatches)
	}

	rec := do(t, h, http.MethodGet, base+"/podium", 0, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, base+"/complete", organizerID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var podium services.PodiumView
	decode(t, rec, "podium", &podium)
	require.NotNil(t, podium.First)
	require.NotNil(t, podium.Second)
	assert.Nil(t, podium.Third)
	assert.Equal(t, 1, podium.First.Rank)

	rec = do(t, h, http.MethodGet, base+"/participants/stats", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats []services.ParticipantStatsView
	decodeBody(t, rec, &stats)
	require.Len(t, stats, 2)
	assert.Equal(t, podium.First.UserID, stats[0].UserID)
}

func TestReadEndpoints_ReturnBareDTOs(t *testing.T) {
	h := testRouter(t)
	id := createTournament(t, h, 101, 102, 103)
	base := "/tournaments/" + strconv.Itoa(id)

	rec := do(t, h, http.MethodGet, base+"/participants/stats", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats []map[string]interface{}
	decodeBody(t, rec, &stats)
	assert.Len(t, stats, 3)

	rec = do(t, h, http.MethodPost, base+"/rounds/start-first", organizerID, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, base+"/rounds/all", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rounds []map[string]interface{}
	decodeBody(t, rec, &rounds)
	require.Len(t, rounds, 2)
	assert.EqualValues(t, 1, rounds[0]["roundNumber"])
	assert.Contains(t, rounds[0], "canStart")

	rec = do(t, h, http.MethodGet, base+"/rounds/1/organizer-status", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status map[string]interface{}
	decodeBody(t, rec, &status)
	assert.EqualValues(t, 1, status["totalMatches"])
	assert.Contains(t, status, "playersWithoutScores")
}

func TestServiceErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{services.ErrTournamentNotFound, http.StatusNotFound},
		{errors.Wrap(services.ErrMatchNotFound, "load match"), http.StatusNotFound},
		{services.ErrForbiddenOperation, http.StatusForbidden},
		{errors.WithHint(services.ErrValidationFailed, "name is required"), http.StatusUnprocessableEntity},
		{services.ErrPairingsAlreadyExist, http.StatusConflict},
		{services.ErrRoundAlreadyStarted, http.StatusConflict},
		{services.ErrRoundDefinitionLocked, http.StatusConflict},
		{services.ErrRoundNotReady, http.StatusBadRequest},
		{services.ErrSubmissionClosed, http.StatusBadRequest},
		{services.ErrInsufficientParticipants, http.StatusBadRequest},
		{errors.New("db is down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			assert.Equal(t, tc.want, serviceErrorStatus(tc.err))
		})
	}
}

func TestMapServiceErrorToHTTP_HidesInternalErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	mapServiceErrorToHTTP(rec, req, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "pq:")
}
