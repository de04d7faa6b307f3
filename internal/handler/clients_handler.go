package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/grupo7/gestao-clientes-go/internal/domain"
	"github.com/grupo7/gestao-clientes-go/internal/infra/observability"
	"github.com/grupo7/gestao-clientes-go/internal/service"
)

// ============================================================
// Visão geral — GET /v1/overview
// ============================================================

func overviewHandler(clientsSvc *service.ClientsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/overview")
		defer span.End()

		sess, ok := requireSession(w, r)
		if !ok {
			return
		}

		overview, err := clientsSvc.Overview(ctx, sess)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, overview)
	}
}

// ============================================================
// Clientes — /v1/clients
// ============================================================

func listClientsHandler(clientsSvc *service.ClientsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/clients")
		defer span.End()

		sess, ok := requireSession(w, r)
		if !ok {
			return
		}

		clients, err := clientsSvc.List(ctx, sess)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"clients": clients})
	}
}

func addClientHandler(clientsSvc *service.ClientsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/clients")
		defer span.End()

		sess, ok := requireSession(w, r)
		if !ok {
			return
		}

		var in domain.ClientInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		// Accept bare digits and store the masked display form.
		in.CPF = formatDocument("cpf", in.CPF)
		in.Phone = formatDocument("phone", in.Phone)

		clients, err := clientsSvc.Add(ctx, sess, in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		span.SetAttributes(attribute.Int("roster.size", len(clients)))
		writeJSON(w, http.StatusCreated, map[string]any{"clients": clients})
	}
}

func removeClientHandler(clientsSvc *service.ClientsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/clients/{clientId}")
		defer span.End()

		sess, ok := requireSession(w, r)
		if !ok {
			return
		}

		clientID := chi.URLParam(r, "clientId")
		clients, err := clientsSvc.Remove(ctx, sess, clientID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"clients": clients})
	}
}

// ============================================================
// Métricas de armazenamento — GET /v1/metrics/storage
// ============================================================

func storageMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetStorageSnapshot())
	}
}
