package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-engine/services"
)

type RoundDefinitionHandler struct {
	roundDefinitionService services.RoundDefinitionService
}

func NewRoundDefinitionHandler(rds services.RoundDefinitionService) *RoundDefinitionHandler {
	return &RoundDefinitionHandler{roundDefinitionService: rds}
}

// ListHandler обрабатывает GET /tournaments/{tournamentID}/round-definitions
func (h *RoundDefinitionHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	ids, ok := urlIDs(w, r, "tournamentID")
	if !ok {
		return
	}

	defs, err := h.roundDefinitionService.ListRoundDefinitions(r.Context(), ids[0])
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"roundDefinitions": defs})
}

// GetHandler обрабатывает GET /tournaments/{tournamentID}/round-definitions/{roundNumber}
func (h *RoundDefinitionHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	ids, ok := urlIDs(w, r, "tournamentID", "roundNumber")
	if !ok {
		return
	}

	def, err := h.roundDefinitionService.GetRoundDefinition(r.Context(), ids[0], ids[1])
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"roundDefinition": def})
}

// UpdateHandler обрабатывает PUT /tournaments/{tournamentID}/round-definitions/{roundNumber}
func (h *RoundDefinitionHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, ok := currentUser(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "tournamentID", "roundNumber")
	if !ok {
		return
	}

	var input services.UpdateRoundDefinitionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	def, err := h.roundDefinitionService.UpdateRoundDefinition(r.Context(), ids[0], ids[1], currentUserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"roundDefinition": def})
}
