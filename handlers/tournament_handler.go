package handlers

import (
	"context"
	"net/http"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: ts}
}

// CreateHandler обрабатывает POST /tournaments
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.CreateTournament(r.Context(), currentUserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"tournament": tournament})
}

// GetByIDHandler обрабатывает GET /tournaments/{tournamentID}
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	ids, ok := urlIDs(w, r, "tournamentID")
	if !ok {
		return
	}

	tournament, err := h.tournamentService.GetTournament(r.Context(), ids[0])
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"tournament": tournament})
}

// ActivateHandler обрабатывает POST /tournaments/{tournamentID}/activate
func (h *TournamentHandler) ActivateHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.tournamentService.ActivateTournament)
}

// CancelHandler обрабатывает POST /tournaments/{tournamentID}/cancel
func (h *TournamentHandler) CancelHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.tournamentService.CancelTournament)
}

func (h *TournamentHandler) transition(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, tournamentID, actingUserID int) (*models.Tournament, error)) {
	currentUserID, ok := currentUser(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "tournamentID")
	if !ok {
		return
	}

	tournament, err := apply(r.Context(), ids[0], currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"tournament": tournament})
}

// CompleteHandler обрабатывает POST /tournaments/{tournamentID}/complete
func (h *TournamentHandler) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, ok := currentUser(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "tournamentID")
	if !ok {
		return
	}

	podium, err := h.tournamentService.CompleteTournament(r.Context(), ids[0], currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"podium": podium})
}

// PodiumHandler обрабатывает GET /tournaments/{tournamentID}/podium
func (h *TournamentHandler) PodiumHandler(w http.ResponseWriter, r *http.Request) {
	ids, ok := urlIDs(w, r, "tournamentID")
	if !ok {
		return
	}

	podium, err := h.tournamentService.GetPodium(r.Context(), ids[0])
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, podium)
}
