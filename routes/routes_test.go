package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-engine/handlers"
	"github.com/Dosada05/tournament-engine/middleware"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/realtime"
	"github.com/Dosada05/tournament-engine/repositories/memory"
	"github.com/Dosada05/tournament-engine/services"
)

var secret = []byte("routes-secret")

func newServer(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := realtime.NewHub(logger)
	svc := services.NewServices(services.Dependencies{
		Tournaments:      memory.NewTournamentRepository(),
		RoundDefinitions: memory.NewRoundDefinitionRepository(),
		Participants:     memory.NewParticipantRepository(),
		Matches:          memory.NewMatchRepository(),
		Standings:        memory.NewTournamentStandingRepository(),
		Tx:               memory.NewTxManager(),
		Publisher:        hub,
		Logger:           logger,
	})

	router := chi.NewRouter()
	SetupRoutes(router, Handlers{
		Tournament:      handlers.NewTournamentHandler(svc.Tournaments),
		Round:           handlers.NewRoundHandler(svc.Pairings, svc.Rounds),
		Match:           handlers.NewMatchHandler(svc.Rounds),
		Participant:     handlers.NewParticipantHandler(svc.Participants),
		RoundDefinition: handlers.NewRoundDefinitionHandler(svc.RoundDefinitions),
		WebSocket:       handlers.NewWebSocketHandler(hub, svc.Tournaments, nil, logger),
	}, Options{
		JWTSecret:          secret,
		CORSAllowedOrigins: []string{"https://club.example.com"},
		Logger:             logger,
	})
	return router
}

func call(t *testing.T, h http.Handler, method, path string, userID int, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID > 0 {
		token, err := middleware.IssueToken(secret, userID, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := call(t, newServer(t), http.MethodGet, "/healthz", 0, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestSwaggerDoc(t *testing.T) {
	rec := call(t, newServer(t), http.MethodGet, "/swagger/doc.json", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		Swagger string                 `json:"swagger"`
		Paths   map[string]interface{} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "2.0", doc.Swagger)
	assert.Contains(t, doc.Paths, "/tournaments/{tournamentID}/rounds/start-next")
}

func TestMutationsRequireToken(t *testing.T) {
	h := newServer(t)

	rec := call(t, h, http.MethodPost, "/api/tournaments", 0, map[string]interface{}{"name": "Open"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(t, h, http.MethodPost, "/api/tournaments/1/rounds/start-first", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPublicReadsWithoutToken(t *testing.T) {
	h := newServer(t)
	rec := call(t, h, http.MethodGet, "/api/tournaments/7/rounds/all", 0, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebSocketUnknownTournament(t *testing.T) {
	rec := call(t, newServer(t), http.MethodGet, "/ws/tournaments/7", 5, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/tournaments", nil)
	req.Header.Set("Origin", "https://club.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://club.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSwissFlowOverHTTP(t *testing.T) {
	h := newServer(t)
	const organizer = 1

	rec := call(t, h, http.MethodPost, "/api/tournaments", organizer, map[string]interface{}{
		"name":                 "League Night",
		"numberOfRounds":       2,
		"roundDurationMinutes": 90,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Tournament struct {
			ID int `json:"id"`
		} `json:"tournament"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	base := "/api/tournaments/" + strconv.Itoa(created.Tournament.ID)

	for _, userID := range []int{11, 12, 13} {
		rec = call(t, h, http.MethodPost, base+"/participants", userID, map[string]string{"name": "p" + strconv.Itoa(userID)})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		rec = call(t, h, http.MethodPost, base+"/participants/"+strconv.Itoa(userID)+"/confirm", organizer, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	rec = call(t, h, http.MethodPost, base+"/activate", organizer, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for round := 1; round <= 2; round++ {
		path := base + "/rounds/start-first"
		if round == 2 {
			path = base + "/rounds/start-next"
		}
		rec = call(t, h, http.MethodPost, path, organizer, nil)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var pairs struct {
			Matches []services.MatchPairView `json:"matches"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pairs))
		require.Len(t, pairs.Matches, 2, "one game and one bye")

		rec = call(t, h, http.MethodPost, base+"/rounds/"+strconv.Itoa(round)+"/start", organizer, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		for _, m := range pairs.Matches {
			if m.Player2ID == nil {
				continue
			}
			// игрок сам вносит результат своего матча
			rec = call(t, h, http.MethodPost, base+"/matches/"+strconv.Itoa(m.MatchID)+"/result", m.Player1ID,
				map[string]int{"player1Score": 15, "player2Score": 9})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		}
	}

	rec = call(t, h, http.MethodPost, base+"/rounds/start-next", organizer, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = call(t, h, http.MethodPost, base+"/complete", organizer, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = call(t, h, http.MethodGet, base+"/podium", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var podium services.PodiumView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &podium))
	require.NotNil(t, podium.First)
	require.NotNil(t, podium.Third)

	rec = call(t, h, http.MethodGet, base+"/rounds/all", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rounds []services.RoundView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rounds))
	require.Len(t, rounds, 2)
	assert.Equal(t, models.RoundCompleted, rounds[1].Status)
}
