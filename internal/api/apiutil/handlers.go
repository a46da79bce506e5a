package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/samaggi-games/tournament-admin/internal/roster"
)

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// ErrorResponse is the JSON error shape for every endpoint.
type ErrorResponse struct {
	Message string   `json:"message"`
	Missing []string `json:"missing,omitempty"`
}

func WriteError(w http.ResponseWriter, status int, message string) {
	_ = WriteJSON(w, status, ErrorResponse{Message: message})
}

// WriteDomainError classifies an error from the roster layer. Validation
// failures name the missing fields; store outages surface as 502 so callers
// can retry; integrity breaches are 500 and need operator attention.
func WriteDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.Ctx(r.Context())
	var ve *roster.ValidationError
	switch {
	case errors.As(err, &ve):
		_ = WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Message: ve.Error(),
			Missing: ve.Missing,
		})
	case roster.IsStoreUnavailable(err):
		logger.Error().Err(err).Msg("Store unavailable")
		WriteError(w, http.StatusBadGateway, "Storage backend unavailable")
	case roster.IsIntegrity(err):
		logger.Error().Err(err).Msg("Data integrity violation")
		WriteError(w, http.StatusInternalServerError, "Data integrity violation")
	default:
		logger.Error().Err(err).Msg("Request failed")
		WriteError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// WriteResult maps an orchestrator result onto HTTP. Rejections are 200s
// with success=false; the refusal is an expected outcome, not a transport
// error.
func WriteResult(w http.ResponseWriter, res roster.Result) {
	status := http.StatusOK
	if res.Outcome == roster.OutcomeNotFound {
		status = http.StatusNotFound
	}
	_ = WriteJSON(w, status, ResultResponse{
		Success:   res.Outcome == roster.OutcomeSuccess,
		Message:   res.Message,
		Details:   res.Details,
		PlayerIDs: res.PlayerIDs,
	})
}

// ResultResponse is the JSON shape of orchestrated mutations.
type ResultResponse struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	Details   roster.Details `json:"details,omitempty"`
	PlayerIDs []string       `json:"playerIds,omitempty"`
}
