package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-engine/services"
)

type MatchHandler struct {
	roundService services.RoundService
}

func NewMatchHandler(rs services.RoundService) *MatchHandler {
	return &MatchHandler{roundService: rs}
}

// SubmitResultHandler обрабатывает POST /tournaments/{tournamentID}/matches/{matchID}/result
func (h *MatchHandler) SubmitResultHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, ok := currentUser(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "tournamentID", "matchID")
	if !ok {
		return
	}

	var input services.SubmitMatchResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.roundService.SubmitMatchResult(r.Context(), ids[0], ids[1], currentUserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"match": match})
}

// SplitHandler обрабатывает POST /tournaments/{tournamentID}/matches/{matchID}/split
func (h *MatchHandler) SplitHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, ok := currentUser(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "tournamentID", "matchID")
	if !ok {
		return
	}

	match, err := h.roundService.ResolveMatchAsSplit(r.Context(), ids[0], ids[1], currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"match": match})
}
