package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/grupo7/gestao-clientes-go/internal/domain"
	"github.com/grupo7/gestao-clientes-go/internal/infra/kv"
	"github.com/grupo7/gestao-clientes-go/internal/infra/observability"
	"github.com/grupo7/gestao-clientes-go/internal/service"
	"github.com/grupo7/gestao-clientes-go/internal/store"
)

type fixture struct {
	auth       *service.AuthService
	onboarding *service.OnboardingService
	clients    *service.ClientsService
	creds      *store.Credentials
	userData   *store.UserData
	metrics    *observability.Metrics
	mem        *kv.Memory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()
	mem := kv.NewMemory()
	metrics := observability.NewMetrics()
	acc := store.NewAccessor(mem, metrics, logger)

	creds := store.NewCredentials(acc, logger)
	userData := store.NewUserData(acc, logger)
	roster := store.NewRoster(acc, logger)
	sessions := store.NewSessions(time.Minute)

	return &fixture{
		auth:       service.NewAuthService(creds, userData, sessions, metrics, "test-secret", time.Hour, logger),
		onboarding: service.NewOnboardingService(userData, metrics, time.Minute, logger),
		clients:    service.NewClientsService(userData, roster, metrics, logger),
		creds:      creds,
		userData:   userData,
		metrics:    metrics,
		mem:        mem,
	}
}

func register(t *testing.T, f *fixture, email string) domain.Session {
	t.Helper()
	resp, err := f.auth.Register(context.Background(), &domain.RegisterRequest{
		Email:    email,
		Password: "segredo123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return domain.Session{UserID: resp.UserID, Email: resp.Email}
}

// ============================================================
// Auth
// ============================================================

func TestAuth_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	resp, err := f.auth.Register(ctx, &domain.RegisterRequest{
		Email:           "dona@empresa.com",
		Password:        "segredo123",
		ConfirmPassword: "segredo123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.UserID == "" || resp.Token == "" {
		t.Fatalf("expected identity and token, got %+v", resp)
	}
	if resp.Session.UserID != resp.UserID {
		t.Errorf("session marker not bound to the new identity")
	}

	claims, err := f.auth.ValidateAccessToken(resp.Token)
	if err != nil {
		t.Fatalf("token must validate: %v", err)
	}
	if claims.Sub != resp.UserID || claims.Email != "dona@empresa.com" {
		t.Errorf("unexpected claims: %+v", claims)
	}

	login, err := f.auth.Login(ctx, &domain.LoginRequest{
		Email: "dona@empresa.com", Password: "segredo123",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.UserID != resp.UserID {
		t.Errorf("login resolved a different identity: %s vs %s", login.UserID, resp.UserID)
	}
}

func TestAuth_DuplicateEmailLeavesUsersUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	register(t, f, "dona@empresa.com")

	_, err := f.auth.Register(ctx, &domain.RegisterRequest{
		Email: "dona@empresa.com", Password: "outra",
	})
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if conflict.Field != "email" {
		t.Errorf("expected field-level email conflict, got %+v", conflict)
	}

	users, err := f.creds.LoadUsers(ctx)
	if err != nil {
		t.Fatalf("load users: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("failed registration must not grow the users list, got %d", len(users))
	}
}

func TestAuth_EmailMatchIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	register(t, f, "dona@empresa.com")

	// A different casing is a different identity, so registration succeeds
	// and login with the original casing still resolves the original.
	if _, err := f.auth.Register(ctx, &domain.RegisterRequest{
		Email: "Dona@empresa.com", Password: "segredo123",
	}); err != nil {
		t.Fatalf("register with different casing: %v", err)
	}

	if _, err := f.auth.Login(ctx, &domain.LoginRequest{
		Email: "DONA@EMPRESA.COM", Password: "segredo123",
	}); err == nil {
		t.Fatal("unknown casing must not log in")
	}
}

func TestAuth_GenericLoginFailureMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	register(t, f, "dona@empresa.com")

	_, errUnknown := f.auth.Login(ctx, &domain.LoginRequest{
		Email: "ninguem@empresa.com", Password: "segredo123",
	})
	_, errWrongPass := f.auth.Login(ctx, &domain.LoginRequest{
		Email: "dona@empresa.com", Password: "errada",
	})

	var u1, u2 *domain.ErrUnauthorized
	if !errors.As(errUnknown, &u1) || !errors.As(errWrongPass, &u2) {
		t.Fatalf("expected unauthorized for both, got %v / %v", errUnknown, errWrongPass)
	}
	if u1.Message != u2.Message {
		t.Errorf("unknown-email and wrong-password must be indistinguishable: %q vs %q", u1.Message, u2.Message)
	}
}

func TestAuth_PasswordMismatchRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.auth.Register(ctx, &domain.RegisterRequest{
		Email: "dona@empresa.com", Password: "a", ConfirmPassword: "b",
	})
	var v *domain.ErrValidation
	if !errors.As(err, &v) || v.Field != "confirmPassword" {
		t.Fatalf("expected confirmPassword validation error, got %v", err)
	}
}

func TestAuth_LogoutClearsIdentityData(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := register(t, f, "dona@empresa.com")

	if err := f.userData.SaveCompanyProfile(ctx, sess.UserID, domain.CompanyProfile{
		Name: "Empresa X", CNPJ: "11.222.333/0001-44",
	}); err != nil {
		t.Fatalf("save company: %v", err)
	}

	if err := f.auth.Logout(ctx, sess); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if id := f.creds.ResolveUserID(ctx); id != "" {
		t.Errorf("currentUser must be gone after logout, resolved %q", id)
	}
	done, _ := f.userData.HasCompletedOnboarding(ctx, sess.UserID)
	if done {
		t.Error("onboarding flag must be cleared on logout")
	}
	if _, ok := f.auth.CurrentSession(ctx, sess); ok {
		t.Error("session must be gone after logout")
	}
}

// ============================================================
// Onboarding
// ============================================================

func TestOnboarding_SubmitRequiresCompanyStep(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := register(t, f, "dona@empresa.com")

	_, err := f.onboarding.Submit(ctx, sess, domain.OnboardingData{
		Company: domain.CompanyProfile{Name: "X", CNPJ: "11.222.333/0001-44"},
	})
	var flowErr *domain.ErrFlowState
	if !errors.As(err, &flowErr) {
		t.Fatalf("expected flow-state error at step 1, got %v", err)
	}
}

func TestOnboarding_NextGatesOnOwnerData(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := domain.Session{UserID: "u1", Email: "a@e.com"}

	_, err := f.onboarding.Next(ctx, sess, domain.OnboardingData{
		User: domain.UserProfile{Name: "", Email: "a@e.com"},
	})
	var v *domain.ErrValidation
	if !errors.As(err, &v) {
		t.Fatalf("expected validation error without owner name, got %v", err)
	}

	flow, err := f.onboarding.Next(ctx, sess, domain.OnboardingData{
		User: domain.UserProfile{Name: "Ana", Email: "a@e.com"},
	})
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if flow.Step != service.StepCompany {
		t.Errorf("expected step 2, got %d", flow.Step)
	}
}

func TestOnboarding_BackKeepsAnswers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := domain.Session{UserID: "u1", Email: "a@e.com"}

	if _, err := f.onboarding.Next(ctx, sess, domain.OnboardingData{
		User: domain.UserProfile{Name: "Ana", Email: "a@e.com", Phone: "(11) 91111-2222"},
	}); err != nil {
		t.Fatalf("next: %v", err)
	}

	flow, err := f.onboarding.Back(ctx, sess)
	if err != nil {
		t.Fatalf("back: %v", err)
	}
	if flow.Step != service.StepUser {
		t.Fatalf("expected step 1 after back, got %d", flow.Step)
	}
	if flow.User.Name != "Ana" || flow.User.Phone != "(11) 91111-2222" {
		t.Errorf("back must keep typed answers: %+v", flow.User)
	}
}

func TestOnboarding_FullFlowCompletesOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := register(t, f, "dona@empresa.com")

	completions := 0
	f.onboarding.OnComplete(func(ctx context.Context, userID string) {
		completions++
		if userID != sess.UserID {
			t.Errorf("completion hook got wrong identity %q", userID)
		}
	})

	if _, err := f.onboarding.Next(ctx, sess, domain.OnboardingData{
		User: domain.UserProfile{Name: "Ana", Email: "dona@empresa.com"},
	}); err != nil {
		t.Fatalf("next: %v", err)
	}

	data, err := f.onboarding.Submit(ctx, sess, domain.OnboardingData{
		Company: domain.CompanyProfile{Name: "Empresa X", CNPJ: "11.222.333/0001-44"},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if data.Company.Industry != "outros" {
		t.Errorf("expected default industry, got %q", data.Company.Industry)
	}
	if completions != 1 {
		t.Fatalf("completion hook must fire exactly once, fired %d times", completions)
	}

	done, err := f.userData.HasCompletedOnboarding(ctx, sess.UserID)
	if err != nil || !done {
		t.Fatalf("expected onboarding flag set (done=%v err=%v)", done, err)
	}

	company, err := f.userData.LoadCompanyProfile(ctx, sess.UserID)
	if err != nil || company == nil {
		t.Fatalf("expected persisted company (err=%v)", err)
	}
	if company.Name != "Empresa X" {
		t.Errorf("unexpected company: %+v", company)
	}
}

func TestOnboarding_GatesArePresenceOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := register(t, f, "dona@empresa.com")

	// A half-typed e-mail is enough to advance; the wizard only asks that the
	// fields are filled in, not well-formed.
	flow, err := f.onboarding.Next(ctx, sess, domain.OnboardingData{
		User: domain.UserProfile{Name: "Ana", Email: "ana@empresa"},
	})
	if err != nil {
		t.Fatalf("next with half-typed email: %v", err)
	}
	if flow.Step != service.StepCompany {
		t.Fatalf("expected step 2, got %d", flow.Step)
	}

	// Same for the CNPJ on submit: any non-blank value completes the flow.
	if _, err := f.onboarding.Submit(ctx, sess, domain.OnboardingData{
		Company: domain.CompanyProfile{Name: "Empresa X", CNPJ: "12.345"},
	}); err != nil {
		t.Fatalf("submit with partial cnpj: %v", err)
	}

	done, err := f.userData.HasCompletedOnboarding(ctx, sess.UserID)
	if err != nil || !done {
		t.Fatalf("expected onboarding flag set (done=%v err=%v)", done, err)
	}
}

func TestOnboarding_SubmitRejectsBlankCNPJ(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := domain.Session{UserID: "u1", Email: "a@e.com"}

	if _, err := f.onboarding.Next(ctx, sess, domain.OnboardingData{
		User: domain.UserProfile{Name: "Ana", Email: "a@e.com"},
	}); err != nil {
		t.Fatalf("next: %v", err)
	}

	_, err := f.onboarding.Submit(ctx, sess, domain.OnboardingData{
		Company: domain.CompanyProfile{Name: "X", CNPJ: "   "},
	})
	var v *domain.ErrValidation
	if !errors.As(err, &v) || v.Field != "company.cnpj" {
		t.Fatalf("expected cnpj validation error, got %v", err)
	}

	// The failed submit must leave the flow at step 2 for a retry.
	flow, err := f.onboarding.Get(ctx, sess)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if flow.Step != service.StepCompany {
		t.Errorf("expected flow still at step 2, got %d", flow.Step)
	}
}

// ============================================================
// Client list
// ============================================================

func TestClients_OverviewReportsOnboardingAndCounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := register(t, f, "dona@empresa.com")

	ov, err := f.clients.Overview(ctx, sess)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if !ov.NeedsOnboarding {
		t.Error("fresh identity must need onboarding")
	}
	if len(ov.Clients) != 0 {
		t.Errorf("fresh identity must have an empty roster, got %d", len(ov.Clients))
	}

	if err := f.userData.SaveCompanyProfile(ctx, sess.UserID, domain.CompanyProfile{
		Name: "Empresa X", CNPJ: "11.222.333/0001-44",
	}); err != nil {
		t.Fatalf("save company: %v", err)
	}

	for _, status := range []string{domain.StatusAtivo, domain.StatusAtivo, domain.StatusPendente} {
		if _, err := f.clients.Add(ctx, sess, domain.ClientInput{
			Name: "Cliente", Email: "c@e.com", Phone: "(11) 90000-0000",
			CPF: "111.222.333-44", Status: status,
		}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	ov, err = f.clients.Overview(ctx, sess)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if ov.NeedsOnboarding {
		t.Error("onboarded identity must not need onboarding")
	}
	if ov.Company == nil || ov.Company.Name != "Empresa X" {
		t.Errorf("expected company in overview, got %+v", ov.Company)
	}
	if ov.StatusCounts.Ativos != 2 || ov.StatusCounts.Pendentes != 1 || ov.StatusCounts.Inativos != 0 {
		t.Errorf("unexpected status counts: %+v", ov.StatusCounts)
	}
}

func TestClients_AddValidatesInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := domain.Session{UserID: "u1", Email: "a@e.com"}

	_, err := f.clients.Add(ctx, sess, domain.ClientInput{
		Name: "Sem CPF", Email: "c@e.com", Phone: "(11) 90000-0000",
	})
	var v *domain.ErrValidation
	if !errors.As(err, &v) || v.Field != "cpf" {
		t.Fatalf("expected cpf validation error, got %v", err)
	}

	roster, err := f.clients.List(ctx, sess)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(roster) != 0 {
		t.Errorf("rejected input must not be persisted, roster has %d", len(roster))
	}
}

func TestClients_RemoveUnknownIDIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := domain.Session{UserID: "u1", Email: "a@e.com"}

	before, err := f.clients.Add(ctx, sess, domain.ClientInput{
		Name: "C", Email: "c@e.com", Phone: "(11) 90000-0000",
		CPF: "111.222.333-44", Status: domain.StatusAtivo,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	after, err := f.clients.Remove(ctx, sess, "nao-existe")
	if err != nil {
		t.Fatalf("remove unknown id: %v", err)
	}
	if len(after) != len(before) {
		t.Errorf("removing an unknown id must not change the roster: %d vs %d", len(after), len(before))
	}
}

func TestClients_OverviewRecordsDuration(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := register(t, f, "dona@empresa.com")

	if _, err := f.clients.Overview(ctx, sess); err != nil {
		t.Fatalf("overview: %v", err)
	}

	families, err := f.metrics.Registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var observed uint64
	for _, mf := range families {
		if mf.GetName() != "gestao_request_duration_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			observed += m.GetHistogram().GetSampleCount()
		}
	}
	if observed == 0 {
		t.Error("expected the overview call to record a request duration sample")
	}
}
