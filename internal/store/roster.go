package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/grupo7/gestao-clientes-go/internal/domain"
)

// registrationDateLayout renders dates the way the management screens show
// them (pt-BR, dd/mm/yyyy).
const registrationDateLayout = "02/01/2006"

// Roster stores the ordered client list of one identity. The whole roster is
// persisted on every mutation; a failed write leaves the previous roster
// intact, so the persisted list is never half-written.
type Roster struct {
	acc    *Accessor
	logger *zap.Logger
}

// NewRoster creates the client roster store.
func NewRoster(acc *Accessor, logger *zap.Logger) *Roster {
	return &Roster{acc: acc, logger: logger}
}

// Load returns the roster in insertion order. Absent or unparsable rosters
// come back empty, never as an error.
func (r *Roster) Load(ctx context.Context, id string) ([]domain.Client, error) {
	ctx, span := tracer.Start(ctx, "Roster.Load")
	defer span.End()

	clients, ok, err := Read[[]domain.Client](ctx, r.acc, NamespaceClients, id)
	if err != nil {
		return nil, err
	}
	if !ok || clients == nil {
		return []domain.Client{}, nil
	}
	return *clients, nil
}

// Append creates a client record from the input — generating an opaque id and
// today's registration date — appends it to the end of the roster and
// persists the whole list. The returned roster is exactly what was persisted.
func (r *Roster) Append(ctx context.Context, id string, in domain.ClientInput) ([]domain.Client, error) {
	ctx, span := tracer.Start(ctx, "Roster.Append")
	defer span.End()

	if id == "" {
		return nil, &domain.ErrNoIdentity{}
	}

	clients, err := r.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	client := domain.Client{
		ID:               uuid.NewString(),
		Name:             in.Name,
		Email:            in.Email,
		Phone:            in.Phone,
		CPF:              in.CPF,
		Address:          in.Address,
		BirthDate:        in.BirthDate,
		Status:           in.Status,
		RegistrationDate: time.Now().Format(registrationDateLayout),
	}
	updated := append(clients, client)

	if err := Write(ctx, r.acc, NamespaceClients, id, updated); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("roster.size", len(updated)))
	r.logger.Info("client added",
		zap.String("user_id", id),
		zap.String("client_id", client.ID),
		zap.Int("roster_size", len(updated)),
	)
	return updated, nil
}

// Remove filters the client out of the roster, preserving the order of the
// remaining records, and persists the result. Removing an unknown client id
// persists the unchanged roster — the operation is idempotent.
func (r *Roster) Remove(ctx context.Context, id, clientID string) ([]domain.Client, error) {
	ctx, span := tracer.Start(ctx, "Roster.Remove")
	defer span.End()

	if id == "" {
		return nil, &domain.ErrNoIdentity{}
	}

	clients, err := r.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := make([]domain.Client, 0, len(clients))
	for _, c := range clients {
		if c.ID != clientID {
			updated = append(updated, c)
		}
	}

	if err := Write(ctx, r.acc, NamespaceClients, id, updated); err != nil {
		return nil, err
	}

	r.logger.Info("client removed",
		zap.String("user_id", id),
		zap.String("client_id", clientID),
		zap.Int("roster_size", len(updated)),
	)
	return updated, nil
}
