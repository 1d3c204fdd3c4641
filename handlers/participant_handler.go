package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-engine/services"
)

type ParticipantHandler struct {
	participantService services.ParticipantService
}

func NewParticipantHandler(ps services.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{participantService: ps}
}

// RegisterHandler обрабатывает POST /tournaments/{tournamentID}/participants
func (h *ParticipantHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, ok := currentUser(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "tournamentID")
	if !ok {
		return
	}

	var input services.RegisterParticipantInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.participantService.RegisterParticipant(r.Context(), ids[0], currentUserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"participant": participant})
}

// ConfirmHandler обрабатывает POST /tournaments/{tournamentID}/participants/{userID}/confirm
func (h *ParticipantHandler) ConfirmHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, ok := currentUser(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "tournamentID", "userID")
	if !ok {
		return
	}

	participant, err := h.participantService.ConfirmParticipant(r.Context(), ids[0], ids[1], currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"participant": participant})
}

// ListHandler обрабатывает GET /tournaments/{tournamentID}/participants
func (h *ParticipantHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	ids, ok := urlIDs(w, r, "tournamentID")
	if !ok {
		return
	}

	participants, err := h.participantService.ListParticipants(r.Context(), ids[0])
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"participants": participants})
}

// StatsHandler обрабатывает GET /tournaments/{tournamentID}/participants/stats
func (h *ParticipantHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	ids, ok := urlIDs(w, r, "tournamentID")
	if !ok {
		return
	}

	stats, err := h.participantService.GetParticipantStats(r.Context(), ids[0])
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if stats == nil {
		stats = []services.ParticipantStatsView{}
	}
	// Тело без обертки: фронтенд ждёт ParticipantStatsDTO[]
	respond(w, r, http.StatusOK, stats)
}
