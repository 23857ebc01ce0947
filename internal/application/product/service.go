package product

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gigboard/gigboard/internal/domain/fault"
	domain "github.com/gigboard/gigboard/internal/domain/product"
	domainUser "github.com/gigboard/gigboard/internal/domain/user"
)

// Service drives product listings and the bid flow.
type Service struct {
	products domain.Repository
	users    domainUser.Repository
	logger   zerolog.Logger
}

// NewService creates a product service.
func NewService(products domain.Repository, users domainUser.Repository, logger zerolog.Logger) *Service {
	return &Service{
		products: products,
		users:    users,
		logger:   logger.With().Str("service", "product").Logger(),
	}
}

// CreateInput defines product listing input.
type CreateInput struct {
	Title         string
	Description   string
	Images        []string
	BasePrice     int64
	AuctionEndsAt *time.Time
}

// UpdateInput defines a partial product update.
type UpdateInput struct {
	Title         *string
	Description   *string
	Images        []string
	BasePrice     *int64
	AuctionEndsAt *time.Time
}

func validateCreate(input CreateInput) error {
	if len(strings.TrimSpace(input.Title)) < 3 {
		return fault.New(fault.KindInvalid, "title must be at least 3 characters")
	}
	if len(strings.TrimSpace(input.Description)) < 10 {
		return fault.New(fault.KindInvalid, "description must be at least 10 characters")
	}
	if input.BasePrice <= 0 {
		return fault.New(fault.KindInvalid, "base price must be a positive number")
	}
	return nil
}

// Create lists a new product and grants the lister role.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*domain.Product, error) {
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, fault.New(fault.KindNotFound, "user not found")
	}
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &domain.Product{
		ProductID:     uuid.New(),
		OwnerID:       owner.UserID,
		Title:         strings.TrimSpace(input.Title),
		Description:   input.Description,
		Images:        input.Images,
		BasePrice:     input.BasePrice,
		CurrentPrice:  input.BasePrice,
		Status:        domain.StatusAvailable,
		AuctionEndsAt: input.AuctionEndsAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	if owner.GrantRole(domainUser.RoleProductLister) {
		owner.UpdatedAt = now
		if err := s.users.Update(ctx, owner); err != nil {
			return nil, err
		}
	}
	s.logger.Info().Str("product_id", p.ProductID.String()).Str("owner_id", owner.UserID.String()).Msg("product listed")
	return p, nil
}

// Get returns a product or a NotFound fault.
func (s *Service) Get(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fault.New(fault.KindNotFound, "product not found")
	}
	return p, nil
}

// ListAvailable returns products open for bidding, newest first.
func (s *Service) ListAvailable(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	status := domain.StatusAvailable
	return s.products.List(ctx, domain.Filter{Status: &status}, limit, offset)
}

// ListByOwner returns the caller's listed products, sold ones included.
func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.Product, error) {
	return s.products.List(ctx, domain.Filter{OwnerID: &ownerID}, limit, offset)
}

// Update edits a product's content fields. Owner only, and only while
// the product is still available. The base price is frozen once a bid
// has been placed, since the current price tracks it.
func (s *Service) Update(ctx context.Context, productID, callerID uuid.UUID, input UpdateInput) (*domain.Product, error) {
	p, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != callerID {
		return nil, fault.New(fault.KindForbidden, "not authorized to update this product")
	}
	if p.Status != domain.StatusAvailable {
		return nil, fault.New(fault.KindConflict, "cannot update a product that has been sold")
	}
	if input.Title != nil {
		p.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		p.Description = *input.Description
	}
	if input.Images != nil {
		p.Images = input.Images
	}
	if input.BasePrice != nil {
		if p.HighestBidder != nil {
			return nil, fault.New(fault.KindConflict, "cannot change the base price after bids have been placed")
		}
		p.BasePrice = *input.BasePrice
		p.CurrentPrice = *input.BasePrice
	}
	if input.AuctionEndsAt != nil {
		p.AuctionEndsAt = input.AuctionEndsAt
	}
	if err := validateCreate(CreateInput{
		Title:       p.Title,
		Description: p.Description,
		BasePrice:   p.BasePrice,
	}); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now().UTC()
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a product listing. Owner only.
func (s *Service) Delete(ctx context.Context, productID, callerID uuid.UUID) error {
	p, err := s.Get(ctx, productID)
	if err != nil {
		return err
	}
	if p.OwnerID != callerID {
		return fault.New(fault.KindForbidden, "not authorized to delete this product")
	}
	if err := s.products.Delete(ctx, p.ProductID); err != nil {
		return err
	}
	s.logger.Info().Str("product_id", p.ProductID.String()).Msg("product deleted")
	return nil
}

// PlaceBid records a bid from the caller.
func (s *Service) PlaceBid(ctx context.Context, productID, bidderID uuid.UUID, amount int64) (*domain.Product, error) {
	p, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	bidder, err := s.users.GetByID(ctx, bidderID)
	if err != nil {
		return nil, err
	}
	if bidder == nil {
		return nil, fault.New(fault.KindNotFound, "user not found")
	}
	if err := p.PlaceBid(bidder.UserID, amount, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("product_id", p.ProductID.String()).
		Str("bidder_id", bidder.UserID.String()).
		Int64("amount", amount).
		Msg("bid placed")
	return p, nil
}

// Finalize closes the sale to the highest bidder.
func (s *Service) Finalize(ctx context.Context, productID, callerID uuid.UUID) (*domain.Product, error) {
	p, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := p.Finalize(callerID, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info().Str("product_id", p.ProductID.String()).Msg("product sold")
	return p, nil
}
