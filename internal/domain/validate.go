package domain

import (
	"regexp"
	"strings"
)

// Validation rules mirror the form-level checks of the management frontend:
// presence of required fields, e-mail shape, masked CPF/CNPJ formats and a
// minimum phone length. Messages are user-facing (pt-BR).

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	cpfRe   = regexp.MustCompile(`^\d{3}\.\d{3}\.\d{3}-\d{2}$`)
	cnpjRe  = regexp.MustCompile(`^\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}$`)
)

// OnlyDigits strips every non-digit rune.
func OnlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// ValidEmail reports whether s looks like an e-mail address.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// ValidCPF reports whether s is a masked CPF (000.000.000-00).
func ValidCPF(s string) bool {
	return cpfRe.MatchString(s)
}

// ValidCNPJ reports whether s is a masked CNPJ (00.000.000/0001-00).
func ValidCNPJ(s string) bool {
	return cnpjRe.MatchString(s)
}

// ValidPhone requires at least 10 digits (DDD + number).
func ValidPhone(s string) bool {
	return len(OnlyDigits(s)) >= 10
}

// Validate applies the add-client form rules. The first failing
// field wins, matching the inline single-error presentation.
func (in *ClientInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &ErrValidation{Field: "name", Message: "Nome é obrigatório"}
	}
	if strings.TrimSpace(in.Email) == "" {
		return &ErrValidation{Field: "email", Message: "E-mail é obrigatório"}
	}
	if !ValidEmail(in.Email) {
		return &ErrValidation{Field: "email", Message: "E-mail inválido"}
	}
	if strings.TrimSpace(in.Phone) == "" {
		return &ErrValidation{Field: "phone", Message: "Telefone é obrigatório"}
	}
	if !ValidPhone(in.Phone) {
		return &ErrValidation{Field: "phone", Message: "Telefone inválido"}
	}
	if strings.TrimSpace(in.CPF) == "" {
		return &ErrValidation{Field: "cpf", Message: "CPF é obrigatório"}
	}
	if !ValidCPF(in.CPF) {
		return &ErrValidation{Field: "cpf", Message: "CPF inválido (formato: 123.456.789-00)"}
	}
	switch in.Status {
	case StatusAtivo, StatusInativo, StatusPendente:
	case "":
		in.Status = StatusAtivo
	default:
		return &ErrValidation{Field: "status", Message: "Status inválido"}
	}
	return nil
}
