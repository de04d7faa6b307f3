package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/grupo7/gestao-clientes-go/internal/domain"
	"github.com/grupo7/gestao-clientes-go/internal/service"
)

// ============================================================
// Autenticação — /v1/auth
// ============================================================

func authRegisterHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/register")
		defer span.End()

		var req domain.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.OwnerCPF = formatDocument("cpf", req.OwnerCPF)
		req.CompanyCNPJ = formatDocument("cnpj", req.CompanyCNPJ)

		resp, err := authSvc.Register(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func authLoginHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/login")
		defer span.End()

		var req domain.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := authSvc.Login(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func authLogoutHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/logout")
		defer span.End()

		sess, ok := requireSession(w, r)
		if !ok {
			return
		}

		if err := authSvc.Logout(ctx, sess); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ============================================================
// Sessão — GET /v1/session
// ============================================================

func sessionHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/session")
		defer span.End()

		sess, ok := requireSession(w, r)
		if !ok {
			return
		}

		marker, active := authSvc.CurrentSession(ctx, sess)
		if !active {
			handleServiceError(w, &domain.ErrNoIdentity{}, logger)
			return
		}
		writeJSON(w, http.StatusOK, marker)
	}
}
