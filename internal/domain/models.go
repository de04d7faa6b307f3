package domain

import "time"

// ============================================================
// Identity / Auth records
// ============================================================

// Credential is one registered user in the global "users" list.
// Passwords are stored and compared in plain text — this system carries no
// real security model; the credential list is scoped to one installation.
type Credential struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
}

// CurrentUser is the persisted pointer to the active identity. It is a
// superset of Credential: created at login/registration, cleared at logout.
type CurrentUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
	LastLogin time.Time `json:"lastLogin"`
}

// SessionMarker is the ephemeral session record, held in memory for the
// lifetime of a session and never persisted.
type SessionMarker struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
}

// Session carries the resolved identity through a request. Handlers build it
// once from the access token and pass it down explicitly; no component does
// ambient identity lookup.
type Session struct {
	UserID string
	Email  string
}

// ============================================================
// Per-user profile records
// ============================================================

// UserProfile is the owner's personal data, independent of credentials.
// Written during onboarding, overwritten on re-onboarding.
type UserProfile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CompanyProfile is the onboarded company. Saving it is the onboarding
// completion trigger.
type CompanyProfile struct {
	Name     string `json:"name"`
	CNPJ     string `json:"cnpj"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Industry string `json:"industry"`
}

// ============================================================
// Clients
// ============================================================

// Client status values.
const (
	StatusAtivo    = "ativo"
	StatusInativo  = "inativo"
	StatusPendente = "pendente"
)

// Client is one client record in a user's roster. Records are immutable after
// creation: added once, deleted explicitly, never edited.
type Client struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	CPF              string `json:"cpf"`
	Address          string `json:"address,omitempty"`
	BirthDate        string `json:"birthDate,omitempty"`
	Status           string `json:"status"`
	RegistrationDate string `json:"registrationDate"` // dd/mm/yyyy (pt-BR)
}

// ClientInput is the add-client payload; id and registrationDate are
// generated by the roster store.
type ClientInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	CPF       string `json:"cpf"`
	Address   string `json:"address,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
	Status    string `json:"status"`
}

// StatusCounts summarizes a roster by client status.
type StatusCounts struct {
	Ativos    int `json:"ativos"`
	Inativos  int `json:"inativos"`
	Pendentes int `json:"pendentes"`
}

// CountByStatus tallies a roster into status buckets.
func CountByStatus(clients []Client) StatusCounts {
	var c StatusCounts
	for _, cl := range clients {
		switch cl.Status {
		case StatusAtivo:
			c.Ativos++
		case StatusInativo:
			c.Inativos++
		case StatusPendente:
			c.Pendentes++
		}
	}
	return c
}

// ============================================================
// Onboarding
// ============================================================

// OnboardingData is the payload produced by a completed onboarding flow.
type OnboardingData struct {
	User    UserProfile    `json:"user"`
	Company CompanyProfile `json:"company"`
}

// ============================================================
// Auth — Request / Response types
// ============================================================

// RegisterRequest is the body for POST /v1/auth/register.
type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	OwnerName       string `json:"ownerName,omitempty"`
	OwnerCPF        string `json:"ownerCpf,omitempty"`
	OwnerRG         string `json:"ownerRg,omitempty"`
	CompanyName     string `json:"companyName,omitempty"`
	CompanyCNPJ     string `json:"companyCnpj,omitempty"`
	NomeFantasia    string `json:"nomeFantasia,omitempty"`
}

// LoginRequest is the body for POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by both register and login.
type AuthResponse struct {
	Token   string        `json:"token"`
	UserID  string        `json:"userId"`
	Email   string        `json:"email"`
	Session SessionMarker `json:"session"`
}

// Overview is the client-list view payload: everything the roster page needs
// on mount.
type Overview struct {
	User            *UserProfile    `json:"user"`
	Company         *CompanyProfile `json:"company"`
	Clients         []Client        `json:"clients"`
	NeedsOnboarding bool            `json:"needsOnboarding"`
	StatusCounts    StatusCounts    `json:"statusCounts"`
}
