// Package profile resolves who sent an inbound message. Resolution never
// blocks the pipeline: unknown or unreachable identities degrade to the
// citizen guest profile.
package profile

import (
	"context"
	"errors"

	"github.com/munidigital/tramite-backend/internal/intake/domain"
)

// ErrProfileNotFound marks an identity the directory does not know
var ErrProfileNotFound = errors.New("requester profile not found")

// Directory resolves a requester key to a profile
type Directory interface {
	Lookup(ctx context.Context, key string) (*domain.RequesterProfile, error)
}
