package store

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/grupo7/gestao-clientes-go/internal/domain"
)

// Credentials manages the global "users" list and the persisted
// current-user pointer. Neither is namespaced by identity — the credential
// list spans all registered users of the installation.
type Credentials struct {
	acc    *Accessor
	logger *zap.Logger
}

// NewCredentials creates the credential store.
func NewCredentials(acc *Accessor, logger *zap.Logger) *Credentials {
	return &Credentials{acc: acc, logger: logger}
}

// LoadUsers returns every registered credential. Absent or corrupt lists are
// empty, never an error.
func (c *Credentials) LoadUsers(ctx context.Context) ([]domain.Credential, error) {
	ctx, span := tracer.Start(ctx, "Credentials.LoadUsers")
	defer span.End()

	raw, ok, err := c.acc.readRaw(ctx, keyUsers)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.Credential{}, nil
	}

	var users []domain.Credential
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		c.logger.Warn("malformed users list, treating as empty", zap.Error(err))
		return []domain.Credential{}, nil
	}
	return users, nil
}

// FindByEmail returns the credential with exactly this email (case-sensitive),
// or nil.
func (c *Credentials) FindByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	users, err := c.LoadUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			return &users[i], nil
		}
	}
	return nil, nil
}

// AppendUser adds a credential to the list and persists it.
func (c *Credentials) AppendUser(ctx context.Context, cred domain.Credential) error {
	ctx, span := tracer.Start(ctx, "Credentials.AppendUser")
	defer span.End()

	users, err := c.LoadUsers(ctx)
	if err != nil {
		return err
	}
	users = append(users, cred)

	raw, err := json.Marshal(users)
	if err != nil {
		return &domain.ErrStorage{Op: "write", Key: keyUsers, Err: err}
	}
	return c.acc.writeRaw(ctx, keyUsers, string(raw))
}

// SaveCurrentUser persists the active-identity pointer.
func (c *Credentials) SaveCurrentUser(ctx context.Context, cu domain.CurrentUser) error {
	ctx, span := tracer.Start(ctx, "Credentials.SaveCurrentUser")
	defer span.End()

	raw, err := json.Marshal(cu)
	if err != nil {
		return &domain.ErrStorage{Op: "write", Key: keyCurrentUser, Err: err}
	}
	return c.acc.writeRaw(ctx, keyCurrentUser, string(raw))
}

// ClearCurrentUser removes the active-identity pointer.
func (c *Credentials) ClearCurrentUser(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Credentials.ClearCurrentUser")
	defer span.End()

	return c.acc.removeKey(ctx, keyCurrentUser)
}

// ResolveUserID determines the current identity from the stored current-user
// record: id, falling back to email, falling back to "" when no record exists
// or it does not parse. It never fails — a malformed record means "absent"
// and the caller redirects to authentication.
func (c *Credentials) ResolveUserID(ctx context.Context) string {
	ctx, span := tracer.Start(ctx, "Credentials.ResolveUserID")
	defer span.End()

	raw, ok, err := c.acc.readRaw(ctx, keyCurrentUser)
	if err != nil || !ok {
		return ""
	}

	var cu domain.CurrentUser
	if err := json.Unmarshal([]byte(raw), &cu); err != nil {
		c.logger.Warn("malformed currentUser record", zap.Error(err))
		return ""
	}
	if cu.ID != "" {
		return cu.ID
	}
	return cu.Email
}
