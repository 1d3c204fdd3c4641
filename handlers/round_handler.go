package handlers

import (
	"context"
	"net/http"

	"github.com/Dosada05/tournament-engine/services"
)

// RoundHandler обслуживает пары и жизненный цикл раундов.
type RoundHandler struct {
	pairingService services.PairingService
	roundService   services.RoundService
}

func NewRoundHandler(ps services.PairingService, rs services.RoundService) *RoundHandler {
	return &RoundHandler{pairingService: ps, roundService: rs}
}

// StartFirstHandler обрабатывает POST /tournaments/{tournamentID}/rounds/start-first
func (h *RoundHandler) StartFirstHandler(w http.ResponseWriter, r *http.Request) {
	h.pair(w, r, h.pairingService.CreateFirstRoundPairings)
}

// StartNextHandler обрабатывает POST /tournaments/{tournamentID}/rounds/start-next
func (h *RoundHandler) StartNextHandler(w http.ResponseWriter, r *http.Request) {
	h.pair(w, r, h.pairingService.CreateNextRoundPairings)
}

func (h *RoundHandler) pair(w http.ResponseWriter, r *http.Request, create func(ctx context.Context, tournamentID, actingUserID int) ([]services.MatchPairView, error)) {
	currentUserID, ok := currentUser(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "tournamentID")
	if !ok {
		return
	}

	matches, err := create(r.Context(), ids[0], currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"matches": matches})
}

// StartRoundHandler обрабатывает POST /tournaments/{tournamentID}/rounds/{roundNumber}/start
func (h *RoundHandler) StartRoundHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, ok := currentUser(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "tournamentID", "roundNumber")
	if !ok {
		return
	}

	round, err := h.roundService.StartRound(r.Context(), ids[0], ids[1], currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"round": round})
}

// StartMatchHandler обрабатывает POST /tournaments/{tournamentID}/rounds/{roundNumber}/matches/{matchID}/start
func (h *RoundHandler) StartMatchHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, ok := currentUser(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "tournamentID", "roundNumber", "matchID")
	if !ok {
		return
	}

	match, err := h.roundService.StartIndividualMatch(r.Context(), ids[0], ids[1], ids[2], currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"match": match})
}

// ExtendHandler обрабатывает POST /tournaments/{tournamentID}/rounds/{roundNumber}/extend?additionalMinutes=X
func (h *RoundHandler) ExtendHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, ok := currentUser(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "tournamentID", "roundNumber")
	if !ok {
		return
	}
	minutes, err := queryInt(r, "additionalMinutes")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := h.roundService.ExtendSubmissionDeadline(r.Context(), ids[0], ids[1], minutes, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"round": round})
}

// AllRoundsHandler обрабатывает GET /tournaments/{tournamentID}/rounds/all
func (h *RoundHandler) AllRoundsHandler(w http.ResponseWriter, r *http.Request) {
	ids, ok := urlIDs(w, r, "tournamentID")
	if !ok {
		return
	}

	rounds, err := h.roundService.GetRoundsView(r.Context(), ids[0])
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	// Тело без обертки: фронтенд ждёт TournamentRoundViewDTO[]
	respond(w, r, http.StatusOK, rounds)
}

// OrganizerStatusHandler обрабатывает GET /tournaments/{tournamentID}/rounds/{roundNumber}/organizer-status
func (h *RoundHandler) OrganizerStatusHandler(w http.ResponseWriter, r *http.Request) {
	ids, ok := urlIDs(w, r, "tournamentID", "roundNumber")
	if !ok {
		return
	}

	status, err := h.roundService.GetRoundStatus(r.Context(), ids[0], ids[1])
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, status)
}
