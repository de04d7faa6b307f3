package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/grupo7/gestao-clientes-go/internal/domain"
	"github.com/grupo7/gestao-clientes-go/internal/service"
)

// ============================================================
// Onboarding — /v1/onboarding
// ============================================================

// decodeOnboardingData reads the wizard payload, normalizing the company CNPJ
// and phone numbers to their masked display forms.
func decodeOnboardingData(r *http.Request) (domain.OnboardingData, error) {
	var data domain.OnboardingData
	if r.Body == nil || r.ContentLength == 0 {
		return data, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		return data, err
	}
	data.User.Phone = formatDocument("phone", data.User.Phone)
	data.Company.CNPJ = formatDocument("cnpj", data.Company.CNPJ)
	data.Company.Phone = formatDocument("phone", data.Company.Phone)
	return data, nil
}

func getOnboardingHandler(onboardingSvc *service.OnboardingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/onboarding")
		defer span.End()

		sess, ok := requireSession(w, r)
		if !ok {
			return
		}

		flow, err := onboardingSvc.Get(ctx, sess)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, flow)
	}
}

func onboardingNextHandler(onboardingSvc *service.OnboardingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/onboarding/next")
		defer span.End()

		sess, ok := requireSession(w, r)
		if !ok {
			return
		}

		data, err := decodeOnboardingData(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		flow, err := onboardingSvc.Next(ctx, sess, data)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, flow)
	}
}

func onboardingBackHandler(onboardingSvc *service.OnboardingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/onboarding/back")
		defer span.End()

		sess, ok := requireSession(w, r)
		if !ok {
			return
		}

		flow, err := onboardingSvc.Back(ctx, sess)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, flow)
	}
}

func onboardingSubmitHandler(onboardingSvc *service.OnboardingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/onboarding/submit")
		defer span.End()

		sess, ok := requireSession(w, r)
		if !ok {
			return
		}

		data, err := decodeOnboardingData(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, err := onboardingSvc.Submit(ctx, sess, data)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
