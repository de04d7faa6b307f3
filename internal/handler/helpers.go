package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/grupo7/gestao-clientes-go/internal/domain"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeFieldError(w http.ResponseWriter, status int, field, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Field: field})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// formatDocument returns the masked display form of a document or phone
// number. Values that already carry the mask, or that have an unexpected
// digit count, pass through untouched.
func formatDocument(kind, value string) string {
	digits := domain.OnlyDigits(value)
	switch kind {
	case "cnpj":
		if len(digits) == 14 && value == digits {
			return fmt.Sprintf("%s.%s.%s/%s-%s", digits[:2], digits[2:5], digits[5:8], digits[8:12], digits[12:14])
		}
	case "cpf":
		if len(digits) == 11 && value == digits {
			return fmt.Sprintf("%s.%s.%s-%s", digits[:3], digits[3:6], digits[6:9], digits[9:11])
		}
	case "phone":
		if len(digits) == 11 && value == digits {
			return fmt.Sprintf("(%s) %s-%s", digits[:2], digits[2:7], digits[7:11])
		} else if len(digits) == 10 && value == digits {
			return fmt.Sprintf("(%s) %s-%s", digits[:2], digits[2:6], digits[6:10])
		}
	}
	return value
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var noIdentity *domain.ErrNoIdentity
	var notFound *domain.ErrNotFound
	var validation *domain.ErrValidation
	var unauthorized *domain.ErrUnauthorized
	var conflict *domain.ErrConflict
	var flowState *domain.ErrFlowState
	var storage *domain.ErrStorage

	switch {
	case errors.As(err, &noIdentity):
		logger.Warn("no identity resolved", zap.String("error", err.Error()))
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeFieldError(w, http.StatusBadRequest, validation.Field, validation.Message)
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &conflict):
		logger.Debug("conflict", zap.String("error", err.Error()))
		writeFieldError(w, http.StatusConflict, conflict.Field, conflict.Message)
	case errors.As(err, &flowState):
		logger.Debug("wrong flow step", zap.Int("step", flowState.Step))
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &storage):
		logger.Error("storage failure", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "Não foi possível acessar os dados. Tente novamente.")
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
