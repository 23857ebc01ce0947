package gig

import (
	"context"

	"github.com/google/uuid"
)

// Filter controls gig listing.
type Filter struct {
	Status     *Status
	OwnerID    *uuid.UUID
	AcceptedBy *uuid.UUID
}

// Repository defines persistence for gigs.
type Repository interface {
	Create(ctx context.Context, gig *Gig) error
	Update(ctx context.Context, gig *Gig) error
	Delete(ctx context.Context, gigID uuid.UUID) error
	GetByID(ctx context.Context, gigID uuid.UUID) (*Gig, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Gig, error)
}
