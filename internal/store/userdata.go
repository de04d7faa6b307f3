package store

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/grupo7/gestao-clientes-go/internal/domain"
)

// UserData reads and writes the owner profile, company profile and the
// onboarding-completion flag for one identity.
type UserData struct {
	acc    *Accessor
	logger *zap.Logger
}

// NewUserData creates the user/company data store.
func NewUserData(acc *Accessor, logger *zap.Logger) *UserData {
	return &UserData{acc: acc, logger: logger}
}

// LoadUserProfile returns the stored owner profile, or nil if absent.
func (u *UserData) LoadUserProfile(ctx context.Context, id string) (*domain.UserProfile, error) {
	ctx, span := tracer.Start(ctx, "UserData.LoadUserProfile")
	defer span.End()

	p, _, err := Read[domain.UserProfile](ctx, u.acc, NamespaceUser, id)
	return p, err
}

// LoadCompanyProfile returns the stored company profile, or nil if absent.
func (u *UserData) LoadCompanyProfile(ctx context.Context, id string) (*domain.CompanyProfile, error) {
	ctx, span := tracer.Start(ctx, "UserData.LoadCompanyProfile")
	defer span.End()

	p, _, err := Read[domain.CompanyProfile](ctx, u.acc, NamespaceCompany, id)
	return p, err
}

// SaveUserProfile overwrites the owner profile.
func (u *UserData) SaveUserProfile(ctx context.Context, id string, p domain.UserProfile) error {
	ctx, span := tracer.Start(ctx, "UserData.SaveUserProfile")
	defer span.End()

	return Write(ctx, u.acc, NamespaceUser, id, p)
}

// SaveCompanyProfile overwrites the company profile and marks onboarding as
// completed — saving the company is the completion trigger.
func (u *UserData) SaveCompanyProfile(ctx context.Context, id string, p domain.CompanyProfile) error {
	ctx, span := tracer.Start(ctx, "UserData.SaveCompanyProfile")
	defer span.End()

	if err := Write(ctx, u.acc, NamespaceCompany, id, p); err != nil {
		return err
	}
	if err := u.acc.writeRaw(ctx, Key(NamespaceOnboarding, id), onboardingDone); err != nil {
		return err
	}

	u.logger.Info("company profile saved, onboarding completed",
		zap.String("user_id", id),
	)
	return nil
}

// HasCompletedOnboarding reports whether the flag holds the literal "true".
// Any other stored value — or none — counts as not onboarded.
func (u *UserData) HasCompletedOnboarding(ctx context.Context, id string) (bool, error) {
	ctx, span := tracer.Start(ctx, "UserData.HasCompletedOnboarding")
	defer span.End()

	if id == "" {
		return false, nil
	}
	raw, ok, err := u.acc.readRaw(ctx, Key(NamespaceOnboarding, id))
	if err != nil {
		return false, err
	}
	return ok && raw == onboardingDone, nil
}

// ClearAll removes the user, company and onboarding keys together. All three
// removes are attempted even if one fails, so a partial failure never leaves
// the cleanup half-done silently.
func (u *UserData) ClearAll(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "UserData.ClearAll")
	defer span.End()

	if id == "" {
		return &domain.ErrNoIdentity{}
	}
	return errors.Join(
		u.acc.Remove(ctx, NamespaceUser, id),
		u.acc.Remove(ctx, NamespaceCompany, id),
		u.acc.Remove(ctx, NamespaceOnboarding, id),
	)
}
