package service

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/grupo7/gestao-clientes-go/internal/domain"
	"github.com/grupo7/gestao-clientes-go/internal/infra/cache"
	"github.com/grupo7/gestao-clientes-go/internal/infra/observability"
	"github.com/grupo7/gestao-clientes-go/internal/store"
)

var onboardingTracer = otel.Tracer("service/onboarding")

// Onboarding wizard steps.
const (
	StepUser    = 1
	StepCompany = 2
)

// FlowState is one identity's in-flight onboarding wizard. Flows live in
// memory with a TTL; an abandoned wizard simply restarts at step 1 with
// whatever profile data is already persisted.
type FlowState struct {
	Step      int                   `json:"step"`
	User      domain.UserProfile    `json:"user"`
	Company   domain.CompanyProfile `json:"company"`
	Completed bool                  `json:"completed"`
}

// OnboardingService drives the two-step wizard: owner data first, company
// data second. Saving the company profile is what marks onboarding complete.
type OnboardingService struct {
	userData   *store.UserData
	flows      *cache.InMemory[FlowState]
	metrics    *observability.Metrics
	logger     *zap.Logger
	onComplete func(ctx context.Context, userID string)
}

// NewOnboardingService creates the onboarding service. flowTTL bounds how long
// an abandoned wizard keeps its partial answers.
func NewOnboardingService(
	userData *store.UserData,
	metrics *observability.Metrics,
	flowTTL time.Duration,
	logger *zap.Logger,
) *OnboardingService {
	return &OnboardingService{
		userData: userData,
		flows:    cache.New[FlowState](flowTTL),
		metrics:  metrics,
		logger:   logger,
	}
}

// OnComplete registers a hook invoked exactly once per completed flow.
func (s *OnboardingService) OnComplete(fn func(ctx context.Context, userID string)) {
	s.onComplete = fn
}

// ============================================================
// Get — GET /v1/onboarding
// ============================================================

// Get returns the identity's flow, creating a fresh one at step 1 when none is
// in flight. A fresh flow is pre-filled from the persisted owner profile so a
// returning user does not retype what registration already captured.
func (s *OnboardingService) Get(ctx context.Context, sess domain.Session) (*FlowState, error) {
	ctx, span := onboardingTracer.Start(ctx, "OnboardingService.Get")
	defer span.End()

	if flow, ok := s.flows.Get(sess.UserID); ok {
		s.metrics.IncrFlowHit("onboarding")
		return &flow, nil
	}
	s.metrics.IncrFlowMiss("onboarding")

	flow := FlowState{Step: StepUser}
	if profile, err := s.userData.LoadUserProfile(ctx, sess.UserID); err != nil {
		return nil, err
	} else if profile != nil {
		flow.User = *profile
	}

	s.flows.Set(sess.UserID, flow)
	return &flow, nil
}

// ============================================================
// Next — POST /v1/onboarding/next
// ============================================================

// Next merges the payload into the flow and advances step 1 → step 2. The
// gate checks presence only: the owner's name and e-mail must both be filled
// in. Format is the form's concern; a half-typed value never blocks the step.
func (s *OnboardingService) Next(ctx context.Context, sess domain.Session, data domain.OnboardingData) (*FlowState, error) {
	ctx, span := onboardingTracer.Start(ctx, "OnboardingService.Next")
	defer span.End()

	flow, err := s.Get(ctx, sess)
	if err != nil {
		return nil, err
	}
	if flow.Step != StepUser {
		return nil, &domain.ErrFlowState{Step: flow.Step, Message: "Fluxo já está na etapa da empresa"}
	}

	mergeFlowData(flow, data)

	if strings.TrimSpace(flow.User.Name) == "" {
		return nil, &domain.ErrValidation{Field: "user.name", Message: "Nome é obrigatório"}
	}
	if strings.TrimSpace(flow.User.Email) == "" {
		return nil, &domain.ErrValidation{Field: "user.email", Message: "E-mail é obrigatório"}
	}

	flow.Step = StepCompany
	s.flows.Set(sess.UserID, *flow)
	return flow, nil
}

// ============================================================
// Back — POST /v1/onboarding/back
// ============================================================

// Back returns to step 1, keeping everything typed so far. Already at step 1
// is a no-op.
func (s *OnboardingService) Back(ctx context.Context, sess domain.Session) (*FlowState, error) {
	ctx, span := onboardingTracer.Start(ctx, "OnboardingService.Back")
	defer span.End()

	flow, err := s.Get(ctx, sess)
	if err != nil {
		return nil, err
	}
	if flow.Step == StepCompany {
		flow.Step = StepUser
		s.flows.Set(sess.UserID, *flow)
	}
	return flow, nil
}

// ============================================================
// Submit — POST /v1/onboarding/submit
// ============================================================

// Submit finishes the wizard: company profile is persisted first (setting the
// completion flag as a side effect), then the owner profile. Like Next, the
// gate is presence-only — company name and CNPJ non-empty. A persistence
// failure leaves the flow at step 2 so the user can retry; the completion hook
// fires exactly once per flow.
func (s *OnboardingService) Submit(ctx context.Context, sess domain.Session, data domain.OnboardingData) (*domain.OnboardingData, error) {
	ctx, span := onboardingTracer.Start(ctx, "OnboardingService.Submit")
	defer span.End()

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("onboarding_submit", time.Since(start)) }()

	flow, err := s.Get(ctx, sess)
	if err != nil {
		return nil, err
	}
	if flow.Step != StepCompany {
		return nil, &domain.ErrFlowState{Step: flow.Step, Message: "Complete seus dados antes de cadastrar a empresa"}
	}

	mergeFlowData(flow, data)

	if strings.TrimSpace(flow.Company.Name) == "" {
		return nil, &domain.ErrValidation{Field: "company.name", Message: "Nome da empresa é obrigatório"}
	}
	if strings.TrimSpace(flow.Company.CNPJ) == "" {
		return nil, &domain.ErrValidation{Field: "company.cnpj", Message: "CNPJ é obrigatório"}
	}
	if flow.Company.Industry == "" {
		flow.Company.Industry = "outros"
	}

	if err := s.userData.SaveCompanyProfile(ctx, sess.UserID, flow.Company); err != nil {
		s.flows.Set(sess.UserID, *flow)
		return nil, err
	}
	if err := s.userData.SaveUserProfile(ctx, sess.UserID, flow.User); err != nil {
		s.flows.Set(sess.UserID, *flow)
		return nil, err
	}

	completed := flow.Completed
	flow.Completed = true
	s.flows.Delete(sess.UserID)

	if !completed && s.onComplete != nil {
		s.onComplete(ctx, sess.UserID)
	}

	s.logger.Info("onboarding completed", zap.String("user_id", sess.UserID))
	return &domain.OnboardingData{User: flow.User, Company: flow.Company}, nil
}

// mergeFlowData overlays the non-empty payload fields onto the flow, so a
// partial request never blanks out answers from an earlier step.
func mergeFlowData(flow *FlowState, data domain.OnboardingData) {
	if data.User.Name != "" {
		flow.User.Name = data.User.Name
	}
	if data.User.Email != "" {
		flow.User.Email = data.User.Email
	}
	if data.User.Phone != "" {
		flow.User.Phone = data.User.Phone
	}
	if data.Company.Name != "" {
		flow.Company.Name = data.Company.Name
	}
	if data.Company.CNPJ != "" {
		flow.Company.CNPJ = data.Company.CNPJ
	}
	if data.Company.Phone != "" {
		flow.Company.Phone = data.Company.Phone
	}
	if data.Company.Address != "" {
		flow.Company.Address = data.Company.Address
	}
	if data.Company.Industry != "" {
		flow.Company.Industry = data.Company.Industry
	}
}
