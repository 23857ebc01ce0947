package product

import (
	"context"

	"github.com/google/uuid"
)

// Filter controls product listing.
type Filter struct {
	Status  *Status
	OwnerID *uuid.UUID
}

// Repository defines persistence for products.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, productID uuid.UUID) error
	GetByID(ctx context.Context, productID uuid.UUID) (*Product, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Product, error)
}
