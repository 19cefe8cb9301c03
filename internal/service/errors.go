package service

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"ugc-marketplace-backend/internal/clients"
	"ugc-marketplace-backend/internal/repository"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrRateLimited     = errors.New("rate limited")
	ErrUpstream        = errors.New("upstream provider failure")
)

var (
	ErrInvalidCredentials  = fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
	ErrInvalidToken        = fmt.Errorf("%w: invalid token", ErrUnauthenticated)
	ErrEmailTaken          = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrCNPJTaken           = fmt.Errorf("%w: cnpj already registered", ErrConflict)
	ErrAlreadyApplied      = fmt.Errorf("%w: creator already applied to this campaign", ErrConflict)
	ErrCampaignNotActive   = fmt.Errorf("%w: campaign is not active", ErrConflict)
	ErrCampaignFull        = fmt.Errorf("%w: campaign has no slots left", ErrConflict)
	ErrInvalidTransition   = fmt.Errorf("%w: invalid status transition", ErrConflict)
	ErrDuplicateInvite     = fmt.Errorf("%w: creator already has a pending invite for this campaign", ErrConflict)
	ErrInviteClosed        = fmt.Errorf("%w: invite is no longer open", ErrConflict)
	ErrInsufficientBalance = fmt.Errorf("%w: insufficient wallet balance", ErrConflict)
	ErrPartnerNotApproved  = fmt.Errorf("%w: creator partner is not approved", ErrConflict)
	ErrNoActiveCompany     = fmt.Errorf("%w: no active company selected", ErrValidation)
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// notFound converts sql.ErrNoRows into ErrNotFound and wraps anything else.
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}

// providerError maps third-party client failures onto service errors.
func providerError(err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return err
	case errors.Is(err, clients.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, clients.ErrRateLimited):
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func isInsufficientBalance(err error) bool {
	return errors.Is(err, repository.ErrInsufficientBalance)
}
