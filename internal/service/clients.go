package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/grupo7/gestao-clientes-go/internal/domain"
	"github.com/grupo7/gestao-clientes-go/internal/infra/observability"
	"github.com/grupo7/gestao-clientes-go/internal/store"
)

var clientsTracer = otel.Tracer("service/clients")

// ClientsService serves the roster page: the aggregated overview plus the
// add/remove mutations. Mutations return the store's persisted roster, never
// a locally patched copy.
type ClientsService struct {
	userData *store.UserData
	roster   *store.Roster
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewClientsService creates the client-list service.
func NewClientsService(userData *store.UserData, roster *store.Roster, metrics *observability.Metrics, logger *zap.Logger) *ClientsService {
	return &ClientsService{userData: userData, roster: roster, metrics: metrics, logger: logger}
}

// ============================================================
// Overview — GET /v1/overview
// ============================================================

// Overview loads everything the roster page needs on mount: owner profile,
// company profile, the client list and whether onboarding is still pending.
// The three loads are independent and run concurrently.
func (s *ClientsService) Overview(ctx context.Context, sess domain.Session) (*domain.Overview, error) {
	ctx, span := clientsTracer.Start(ctx, "ClientsService.Overview")
	defer span.End()

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("overview", time.Since(start)) }()

	var (
		user    *domain.UserProfile
		company *domain.CompanyProfile
		clients []domain.Client
		done    bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.userData.LoadUserProfile(gctx, sess.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		company, err = s.userData.LoadCompanyProfile(gctx, sess.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		clients, err = s.roster.Load(gctx, sess.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		done, err = s.userData.HasCompletedOnboarding(gctx, sess.UserID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("roster.size", len(clients)),
		attribute.Bool("onboarding.done", done),
	)

	return &domain.Overview{
		User:            user,
		Company:         company,
		Clients:         clients,
		NeedsOnboarding: !done,
		StatusCounts:    domain.CountByStatus(clients),
	}, nil
}

// ============================================================
// List — GET /v1/clients
// ============================================================

func (s *ClientsService) List(ctx context.Context, sess domain.Session) ([]domain.Client, error) {
	ctx, span := clientsTracer.Start(ctx, "ClientsService.List")
	defer span.End()

	return s.roster.Load(ctx, sess.UserID)
}

// ============================================================
// Add — POST /v1/clients
// ============================================================

// Add validates the input and appends the client. The returned roster is
// exactly what the store persisted.
func (s *ClientsService) Add(ctx context.Context, sess domain.Session, in domain.ClientInput) ([]domain.Client, error) {
	ctx, span := clientsTracer.Start(ctx, "ClientsService.Add")
	defer span.End()

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("client_add", time.Since(start)) }()

	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.roster.Append(ctx, sess.UserID, in)
}

// ============================================================
// Remove — DELETE /v1/clients/{clientId}
// ============================================================

// Remove deletes the client from the roster. An unknown client id is not an
// error; the unchanged roster comes back.
func (s *ClientsService) Remove(ctx context.Context, sess domain.Session, clientID string) ([]domain.Client, error) {
	ctx, span := clientsTracer.Start(ctx, "ClientsService.Remove")
	defer span.End()

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("client_remove", time.Since(start)) }()

	if clientID == "" {
		return nil, &domain.ErrValidation{Field: "clientId", Message: "Identificador do cliente é obrigatório"}
	}
	return s.roster.Remove(ctx, sess.UserID, clientID)
}
