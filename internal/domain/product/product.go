package product

import (
	"time"

	"github.com/google/uuid"

	"github.com/gigboard/gigboard/internal/domain/fault"
)

// Status represents product sale status.
type Status string

const (
	StatusAvailable Status = "available"
	StatusSold      Status = "sold"
)

// Product is an item listed for sale. Buyers push the current price up
// with bids; the owner finalizes the sale to the highest bidder.
type Product struct {
	ID            int64      `json:"id"`
	ProductID     uuid.UUID  `json:"productId"`
	OwnerID       uuid.UUID  `json:"ownerId"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Images        []string   `json:"images"`
	BasePrice     int64      `json:"basePrice"`
	CurrentPrice  int64      `json:"currentPrice"`
	Status        Status     `json:"status"`
	AuctionEndsAt *time.Time `json:"auctionEndsAt,omitempty"`
	HighestBidder *uuid.UUID `json:"highestBidder,omitempty"`
	SoldAt        *time.Time `json:"soldAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// AuctionEnded reports whether the optional bidding deadline has passed.
func (p *Product) AuctionEnded(now time.Time) bool {
	return p.AuctionEndsAt != nil && now.After(*p.AuctionEndsAt)
}

// PlaceBid records a bid, raising the current price.
func (p *Product) PlaceBid(bidderID uuid.UUID, amount int64, now time.Time) error {
	if bidderID == p.OwnerID {
		return fault.New(fault.KindForbidden, "you cannot bid on your own product")
	}
	if p.Status != StatusAvailable {
		return fault.New(fault.KindConflict, "this product is no longer available for bidding")
	}
	if p.AuctionEnded(now) {
		return fault.New(fault.KindConflict, "bidding has ended for this product")
	}
	if amount <= p.CurrentPrice {
		return fault.Newf(fault.KindInvalid, "bid must be higher than the current price of %d", p.CurrentPrice)
	}
	p.CurrentPrice = amount
	p.HighestBidder = &bidderID
	p.UpdatedAt = now
	return nil
}

// Finalize closes the sale to the highest bidder. Owner only.
func (p *Product) Finalize(callerID uuid.UUID, now time.Time) error {
	if callerID != p.OwnerID {
		return fault.New(fault.KindForbidden, "only the product owner can finalize the sale")
	}
	if p.Status != StatusAvailable {
		return fault.New(fault.KindConflict, "this product is no longer available")
	}
	if p.HighestBidder == nil {
		return fault.New(fault.KindConflict, "no bids have been placed on this product")
	}
	p.Status = StatusSold
	p.SoldAt = &now
	p.UpdatedAt = now
	return nil
}
