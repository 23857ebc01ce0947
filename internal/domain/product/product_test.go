package product

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigboard/gigboard/internal/domain/fault"
)

func newAvailableProduct(owner uuid.UUID) *Product {
	now := time.Now().UTC()
	return &Product{
		ProductID:    uuid.New(),
		OwnerID:      owner,
		Title:        "Mechanical keyboard",
		Description:  "87 keys, barely used",
		BasePrice:    120,
		CurrentPrice: 120,
		Status:       StatusAvailable,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestProduct_PlaceBid(t *testing.T) {
	owner := uuid.New()
	bidder := uuid.New()
	now := time.Now().UTC()

	t.Run("success raises current price", func(t *testing.T) {
		p := newAvailableProduct(owner)

		require.NoError(t, p.PlaceBid(bidder, 150, now))

		assert.Equal(t, int64(150), p.CurrentPrice)
		require.NotNil(t, p.HighestBidder)
		assert.Equal(t, bidder, *p.HighestBidder)
	})

	t.Run("outbid replaces highest bidder", func(t *testing.T) {
		p := newAvailableProduct(owner)
		other := uuid.New()
		require.NoError(t, p.PlaceBid(bidder, 150, now))

		require.NoError(t, p.PlaceBid(other, 160, now))

		assert.Equal(t, int64(160), p.CurrentPrice)
		assert.Equal(t, other, *p.HighestBidder)
	})

	t.Run("owner cannot bid", func(t *testing.T) {
		p := newAvailableProduct(owner)

		err := p.PlaceBid(owner, 150, now)

		assert.True(t, fault.IsKind(err, fault.KindForbidden))
	})

	t.Run("bid at current price rejected", func(t *testing.T) {
		p := newAvailableProduct(owner)

		err := p.PlaceBid(bidder, 120, now)

		assert.True(t, fault.IsKind(err, fault.KindInvalid))
		assert.Nil(t, p.HighestBidder)
	})

	t.Run("sold product rejects bids", func(t *testing.T) {
		p := newAvailableProduct(owner)
		require.NoError(t, p.PlaceBid(bidder, 150, now))
		require.NoError(t, p.Finalize(owner, now))

		err := p.PlaceBid(bidder, 200, now)

		assert.True(t, fault.IsKind(err, fault.KindConflict))
	})

	t.Run("ended auction rejects bids", func(t *testing.T) {
		p := newAvailableProduct(owner)
		ends := now.Add(-time.Minute)
		p.AuctionEndsAt = &ends

		err := p.PlaceBid(bidder, 150, now)

		assert.True(t, fault.IsKind(err, fault.KindConflict))
	})
}

func TestProduct_Finalize(t *testing.T) {
	owner := uuid.New()
	bidder := uuid.New()
	now := time.Now().UTC()

	t.Run("success", func(t *testing.T) {
		p := newAvailableProduct(owner)
		require.NoError(t, p.PlaceBid(bidder, 150, now))

		require.NoError(t, p.Finalize(owner, now))

		assert.Equal(t, StatusSold, p.Status)
		require.NotNil(t, p.SoldAt)
		assert.Equal(t, bidder, *p.HighestBidder)
	})

	t.Run("only owner", func(t *testing.T) {
		p := newAvailableProduct(owner)
		require.NoError(t, p.PlaceBid(bidder, 150, now))

		err := p.Finalize(bidder, now)

		assert.True(t, fault.IsKind(err, fault.KindForbidden))
		assert.Equal(t, StatusAvailable, p.Status)
	})

	t.Run("no bids", func(t *testing.T) {
		p := newAvailableProduct(owner)

		err := p.Finalize(owner, now)

		assert.True(t, fault.IsKind(err, fault.KindConflict))
	})

	t.Run("already sold", func(t *testing.T) {
		p := newAvailableProduct(owner)
		require.NoError(t, p.PlaceBid(bidder, 150, now))
		require.NoError(t, p.Finalize(owner, now))

		err := p.Finalize(owner, now)

		assert.True(t, fault.IsKind(err, fault.KindConflict))
	})
}
