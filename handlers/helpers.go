package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/tournament-engine/middleware"
	"github.com/Dosada05/tournament-engine/services"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return errors.Newf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return errors.Newf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return errors.Newf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return errors.Newf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return errors.Newf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // Паника, т.к. это ошибка программиста (передан не указатель)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func respond(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	if err := writeJSON(w, status, data, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}, hints ...string) {
	env := jsonResponse{"error": message}
	if len(hints) > 0 {
		env["hints"] = hints
	}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "internal server error", "method", r.Method, "path", r.URL.Path, "error", err)
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

func getIDFromURL(r *http.Request, paramName string) (int, error) {
	idStr := chi.URLParam(r, paramName)
	if idStr == "" {
		return 0, errors.Newf("missing %s in URL path", paramName)
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, errors.Newf("invalid %s format: %q", paramName, idStr)
	}

	if id <= 0 {
		return 0, errors.Newf("invalid %s value: %d", paramName, id)
	}

	return id, nil
}

// currentUser returns the authenticated user id or writes 401.
func currentUser(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return 0, false
	}
	return userID, true
}

// urlIDs parses the named URL params in order, writing 400 on the first bad one.
func urlIDs(w http.ResponseWriter, r *http.Request, names ...string) ([]int, bool) {
	ids := make([]int, 0, len(names))
	for _, name := range names {
		id, err := getIDFromURL(r, name)
		if err != nil {
			badRequestResponse(w, r, err)
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	status := serviceErrorStatus(err)
	if status == http.StatusInternalServerError {
		serverErrorResponse(w, r, err)
		return
	}
	errorResponse(w, r, status, err.Error(), errors.GetAllHints(err)...)
}

func serviceErrorStatus(err error) int {
	switch {
	// Не найдено
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrParticipantNotFound),
		errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrRoundDefinitionNotFound):
		return http.StatusNotFound

	case errors.Is(err, services.ErrForbiddenOperation):
		return http.StatusForbidden

	case errors.Is(err, services.ErrValidationFailed):
		return http.StatusUnprocessableEntity

	// Конфликты состояния
	case errors.Is(err, services.ErrPairingsAlreadyExist),
		errors.Is(err, services.ErrAllRoundsPaired),
		errors.Is(err, services.ErrRoundAlreadyStarted),
		errors.Is(err, services.ErrMatchAlreadyStarted),
		errors.Is(err, services.ErrMatchAlreadyResolved),
		errors.Is(err, services.ErrRegistrationConflict),
		errors.Is(err, services.ErrRoundDefinitionLocked):
		return http.StatusConflict

	// Бизнес-правила
	case errors.Is(err, services.ErrInsufficientParticipants),
		errors.Is(err, services.ErrRoundNotReady),
		errors.Is(err, services.ErrRoundsIncomplete),
		errors.Is(err, services.ErrInvalidRoundStartMode),
		errors.Is(err, services.ErrTournamentNotInProgress),
		errors.Is(err, services.ErrTournamentNotCompleted),
		errors.Is(err, services.ErrInvalidStatusTransition),
		errors.Is(err, services.ErrRegistrationClosed),
		errors.Is(err, services.ErrRoundNotInProgress),
		errors.Is(err, services.ErrMatchNotStarted),
		errors.Is(err, services.ErrMatchIsBye),
		errors.Is(err, services.ErrSubmissionClosed):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, errors.Newf("missing %s query parameter", name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Newf("invalid %s query parameter: %q", name, raw)
	}
	return v, nil
}
