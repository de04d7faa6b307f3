// Package service — AuthService handles registration, login, logout and
// access-token management over the credential store.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/grupo7/gestao-clientes-go/internal/domain"
	"github.com/grupo7/gestao-clientes-go/internal/infra/observability"
	"github.com/grupo7/gestao-clientes-go/internal/store"
)

var authTracer = otel.Tracer("service/auth")

// AuthService orchestrates the authentication flows. Credentials are matched
// exactly as stored: case-sensitive email, plain-text password comparison.
// This system carries no real security model and the generic failure message
// never reveals which of the two fields was wrong.
type AuthService struct {
	creds     *store.Credentials
	userData  *store.UserData
	sessions  *store.Sessions
	metrics   *observability.Metrics
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	creds *store.Credentials,
	userData *store.UserData,
	sessions *store.Sessions,
	metrics *observability.Metrics,
	jwtSecret string,
	tokenTTL time.Duration,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		creds:     creds,
		userData:  userData,
		sessions:  sessions,
		metrics:   metrics,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// ============================================================
// Register — POST /v1/auth/register
// ============================================================

func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Register")
	defer span.End()

	if !domain.ValidEmail(req.Email) {
		return nil, &domain.ErrValidation{Field: "email", Message: "E-mail inválido"}
	}
	if req.Password == "" {
		return nil, &domain.ErrValidation{Field: "password", Message: "Senha é obrigatória"}
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		return nil, &domain.ErrValidation{Field: "confirmPassword", Message: "As senhas não coincidem"}
	}
	if req.OwnerCPF != "" && !domain.ValidCPF(req.OwnerCPF) {
		return nil, &domain.ErrValidation{Field: "ownerCpf", Message: "CPF inválido (formato: 123.456.789-00)"}
	}
	if req.CompanyCNPJ != "" && !domain.ValidCNPJ(req.CompanyCNPJ) {
		return nil, &domain.ErrValidation{Field: "companyCnpj", Message: "CNPJ inválido (formato: 00.000.000/0001-00)"}
	}

	// Duplicate check is case-sensitive, matching the login comparison.
	existing, err := s.creds.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		return nil, &domain.ErrConflict{Field: "email", Message: "Este e-mail já está cadastrado"}
	}

	cred := domain.Credential{
		ID:        uuid.NewString(),
		Email:     req.Email,
		Password:  req.Password,
		CreatedAt: time.Now(),
	}
	if err := s.creds.AppendUser(ctx, cred); err != nil {
		return nil, fmt.Errorf("append user: %w", err)
	}

	// A brand-new identity must start clean even if an old record somehow
	// sits under the same id.
	if err := s.userData.ClearAll(ctx, cred.ID); err != nil {
		s.logger.Warn("register: cleanup of fresh identity failed",
			zap.String("user_id", cred.ID),
			zap.Error(err),
		)
	}

	// The cadastro form already collects the owner's data; keep it so the
	// onboarding wizard opens pre-filled.
	if req.OwnerName != "" {
		if err := s.userData.SaveUserProfile(ctx, cred.ID, domain.UserProfile{
			Name:  req.OwnerName,
			Email: req.Email,
		}); err != nil {
			return nil, fmt.Errorf("save owner profile: %w", err)
		}
	}

	return s.openSession(ctx, cred, "customer registered")
}

// ============================================================
// Login — POST /v1/auth/login
// ============================================================

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	cred, err := s.creds.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	// One generic message for both unknown email and wrong password.
	if cred == nil || cred.Password != req.Password {
		s.metrics.IncrAuthFailure()
		s.logger.Warn("login rejected", zap.String("email", req.Email))
		return nil, &domain.ErrUnauthorized{Message: "E-mail ou senha incorretos"}
	}

	return s.openSession(ctx, *cred, "customer logged in")
}

// openSession persists the current-user pointer, creates the session marker
// and signs the access token. Shared tail of register and login.
func (s *AuthService) openSession(ctx context.Context, cred domain.Credential, event string) (*domain.AuthResponse, error) {
	now := time.Now()
	if err := s.creds.SaveCurrentUser(ctx, domain.CurrentUser{
		ID:        cred.ID,
		Email:     cred.Email,
		Password:  cred.Password,
		CreatedAt: cred.CreatedAt,
		LastLogin: now,
	}); err != nil {
		return nil, fmt.Errorf("save current user: %w", err)
	}

	marker := s.sessions.Create(cred.ID, cred.Email)

	token, err := s.signAccessToken(cred.ID, cred.Email)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	s.logger.Info(event,
		zap.String("user_id", cred.ID),
		zap.String("email", cred.Email),
	)

	return &domain.AuthResponse{
		Token:   token,
		UserID:  cred.ID,
		Email:   cred.Email,
		Session: marker,
	}, nil
}

// ============================================================
// Logout — POST /v1/auth/logout
// ============================================================

// Logout tears the whole identity down: the current-user pointer, the session
// marker and every namespaced record of the user. All steps run even when an
// earlier one fails.
func (s *AuthService) Logout(ctx context.Context, sess domain.Session) error {
	ctx, span := authTracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	err := errors.Join(
		s.creds.ClearCurrentUser(ctx),
		s.userData.ClearAll(ctx, sess.UserID),
	)
	s.sessions.Drop(sess.UserID)

	if err != nil {
		return fmt.Errorf("logout cleanup: %w", err)
	}
	s.logger.Info("customer logged out", zap.String("user_id", sess.UserID))
	return nil
}

// ============================================================
// CurrentSession — GET /v1/session
// ============================================================

// CurrentSession reports the active session marker for the identity, falling
// back to the persisted current-user record when the marker has expired. An
// absent or malformed record reads as no session.
func (s *AuthService) CurrentSession(ctx context.Context, sess domain.Session) (*domain.SessionMarker, bool) {
	ctx, span := authTracer.Start(ctx, "AuthService.CurrentSession")
	defer span.End()

	if marker, ok := s.sessions.Get(sess.UserID); ok {
		return &marker, true
	}

	if id := s.creds.ResolveUserID(ctx); id != "" && id == sess.UserID {
		marker := s.sessions.Create(sess.UserID, sess.Email)
		return &marker, true
	}
	return nil, false
}

// ============================================================
// ValidateToken — used by middleware
// ============================================================

// JWTClaims represents the custom claims in access tokens.
type JWTClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Type  string `json:"type"`
	jwt.RegisteredClaims
}

func (s *AuthService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido ou expirado"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido"}
	}

	if claims.Type != "access" {
		return nil, &domain.ErrUnauthorized{Message: "Tipo de token inválido"}
	}

	return claims, nil
}

func (s *AuthService) signAccessToken(userID, email string) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Sub:   userID,
		Email: email,
		Type:  "access",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			Issuer:    "gestao-clientes-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
