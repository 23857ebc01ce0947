package gig

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	chatmocks "github.com/gigboard/gigboard/internal/domain/chat/mocks"
	"github.com/gigboard/gigboard/internal/domain/fault"
	domain "github.com/gigboard/gigboard/internal/domain/gig"
	gigmocks "github.com/gigboard/gigboard/internal/domain/gig/mocks"
	domainUser "github.com/gigboard/gigboard/internal/domain/user"
	usermocks "github.com/gigboard/gigboard/internal/domain/user/mocks"
)

type fixtures struct {
	gigs  *gigmocks.MockRepository
	users *usermocks.MockRepository
	chats *chatmocks.MockRepository
	svc   *Service
}

func newFixtures(t *testing.T) fixtures {
	ctrl := gomock.NewController(t)
	gigs := gigmocks.NewMockRepository(ctrl)
	users := usermocks.NewMockRepository(ctrl)
	chats := chatmocks.NewMockRepository(ctrl)
	return fixtures{
		gigs:  gigs,
		users: users,
		chats: chats,
		svc:   NewService(gigs, users, chats, zerolog.Nop()),
	}
}

func buyer() *domainUser.User {
	return &domainUser.User{
		UserID: uuid.New(),
		Email:  "owner@example.com",
		Roles:  []domainUser.Role{domainUser.RoleBuyer},
	}
}

func validCreateInput() CreateInput {
	return CreateInput{
		Title:       "Design a logo",
		Description: "A clean vector logo for a coffee shop",
		Price:       15000,
		Category:    "design",
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newFixtures(t)
		owner := buyer()
		f.users.EXPECT().GetByID(ctx, owner.UserID).Return(owner, nil)
		f.gigs.EXPECT().Create(ctx, gomock.Any()).Return(nil)

		g, err := f.svc.Create(ctx, owner.UserID, validCreateInput())
		require.NoError(t, err)
		assert.Equal(t, domain.StatusActive, g.Status)
		assert.Equal(t, owner.UserID, g.OwnerID)
		assert.Equal(t, domain.DefaultMaxRevisions, g.MaxRevisions)
		assert.NotEqual(t, uuid.Nil, g.GigID)
	})

	t.Run("product lister forbidden", func(t *testing.T) {
		f := newFixtures(t)
		owner := buyer()
		owner.Roles = append(owner.Roles, domainUser.RoleProductLister)
		f.users.EXPECT().GetByID(ctx, owner.UserID).Return(owner, nil)

		_, err := f.svc.Create(ctx, owner.UserID, validCreateInput())
		assert.True(t, fault.IsKind(err, fault.KindForbidden))
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixtures(t)
		id := uuid.New()
		f.users.EXPECT().GetByID(ctx, id).Return(nil, nil)

		_, err := f.svc.Create(ctx, id, validCreateInput())
		assert.True(t, fault.IsKind(err, fault.KindNotFound))
	})

	t.Run("validation", func(t *testing.T) {
		cases := []struct {
			name   string
			mutate func(*CreateInput)
		}{
			{"short title", func(in *CreateInput) { in.Title = "ab" }},
			{"short description", func(in *CreateInput) { in.Description = "too short" }},
			{"zero price", func(in *CreateInput) { in.Price = 0 }},
			{"missing category", func(in *CreateInput) { in.Category = "  " }},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				f := newFixtures(t)
				owner := buyer()
				f.users.EXPECT().GetByID(ctx, owner.UserID).Return(owner, nil)

				input := validCreateInput()
				tc.mutate(&input)
				_, err := f.svc.Create(ctx, owner.UserID, input)
				assert.True(t, fault.IsKind(err, fault.KindInvalid))
			})
		}
	})
}

func TestAccept(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns worker and grants role", func(t *testing.T) {
		f := newFixtures(t)
		owner := buyer()
		worker := buyer()
		g := &domain.Gig{GigID: uuid.New(), OwnerID: owner.UserID, Status: domain.StatusActive}

		f.gigs.EXPECT().GetByID(ctx, g.GigID).Return(g, nil)
		f.users.EXPECT().GetByID(ctx, worker.UserID).Return(worker, nil)
		f.gigs.EXPECT().Update(ctx, g).Return(nil)
		f.users.EXPECT().Update(ctx, worker).Return(nil)

		got, err := f.svc.Accept(ctx, g.GigID, worker.UserID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInProgress, got.Status)
		require.NotNil(t, got.AcceptedBy)
		assert.Equal(t, worker.UserID, *got.AcceptedBy)
		assert.True(t, worker.HasRole(domainUser.RoleGigWorker))
	})

	t.Run("existing gig worker skips role update", func(t *testing.T) {
		f := newFixtures(t)
		owner := buyer()
		worker := buyer()
		worker.Roles = append(worker.Roles, domainUser.RoleGigWorker)
		g := &domain.Gig{GigID: uuid.New(), OwnerID: owner.UserID, Status: domain.StatusActive}

		f.gigs.EXPECT().GetByID(ctx, g.GigID).Return(g, nil)
		f.users.EXPECT().GetByID(ctx, worker.UserID).Return(worker, nil)
		f.gigs.EXPECT().Update(ctx, g).Return(nil)

		_, err := f.svc.Accept(ctx, g.GigID, worker.UserID)
		require.NoError(t, err)
	})

	t.Run("own gig forbidden", func(t *testing.T) {
		f := newFixtures(t)
		owner := buyer()
		g := &domain.Gig{GigID: uuid.New(), OwnerID: owner.UserID, Status: domain.StatusActive}

		f.gigs.EXPECT().GetByID(ctx, g.GigID).Return(g, nil)
		f.users.EXPECT().GetByID(ctx, owner.UserID).Return(owner, nil)

		_, err := f.svc.Accept(ctx, g.GigID, owner.UserID)
		assert.True(t, fault.IsKind(err, fault.KindForbidden))
	})
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("persists expiry before rejecting", func(t *testing.T) {
		f := newFixtures(t)
		workerID := uuid.New()
		deadline := time.Now().UTC().Add(-time.Hour)
		g := &domain.Gig{
			GigID:      uuid.New(),
			OwnerID:    uuid.New(),
			Status:     domain.StatusInProgress,
			AcceptedBy: &workerID,
			TimeLimit:  &deadline,
		}

		f.gigs.EXPECT().GetByID(ctx, g.GigID).Return(g, nil)
		f.gigs.EXPECT().Update(ctx, g).Return(nil)

		_, err := f.svc.Submit(ctx, g.GigID, workerID)
		assert.True(t, fault.IsKind(err, fault.KindConflict))
		assert.Equal(t, domain.StatusInactive, g.Status)
	})
}

func TestApprove(t *testing.T) {
	ctx := context.Background()

	t.Run("completes gig and seals conversation", func(t *testing.T) {
		f := newFixtures(t)
		ownerID := uuid.New()
		workerID := uuid.New()
		g := &domain.Gig{GigID: uuid.New(), OwnerID: ownerID, Status: domain.StatusSubmitted, AcceptedBy: &workerID}

		f.gigs.EXPECT().GetByID(ctx, g.GigID).Return(g, nil)
		f.gigs.EXPECT().Update(ctx, g).Return(nil)
		f.chats.EXPECT().SealByGig(ctx, g.GigID).Return(int64(4), nil)

		got, err := f.svc.Approve(ctx, g.GigID, ownerID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, got.Status)
		assert.NotNil(t, got.CompletedAt)
	})

	t.Run("seal failure does not fail approval", func(t *testing.T) {
		f := newFixtures(t)
		ownerID := uuid.New()
		workerID := uuid.New()
		g := &domain.Gig{GigID: uuid.New(), OwnerID: ownerID, Status: domain.StatusSubmitted, AcceptedBy: &workerID}

		f.gigs.EXPECT().GetByID(ctx, g.GigID).Return(g, nil)
		f.gigs.EXPECT().Update(ctx, g).Return(nil)
		f.chats.EXPECT().SealByGig(ctx, g.GigID).Return(int64(0), assert.AnError)

		_, err := f.svc.Approve(ctx, g.GigID, ownerID)
		require.NoError(t, err)
	})
}

func TestRevisionRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixtures(t)
	ownerID := uuid.New()
	workerID := uuid.New()
	g := &domain.Gig{
		GigID:        uuid.New(),
		OwnerID:      ownerID,
		Status:       domain.StatusInProgress,
		AcceptedBy:   &workerID,
		MaxRevisions: domain.DefaultMaxRevisions,
	}

	f.gigs.EXPECT().GetByID(ctx, g.GigID).Return(g, nil).Times(4)
	f.gigs.EXPECT().Update(ctx, g).Return(nil).Times(4)
	f.chats.EXPECT().SealByGig(ctx, g.GigID).Return(int64(2), nil)

	_, err := f.svc.Submit(ctx, g.GigID, workerID)
	require.NoError(t, err)

	got, err := f.svc.RequestRevision(ctx, g.GigID, ownerID, "fix formatting")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInRevision, got.Status)
	assert.Equal(t, 1, got.RevisionCount)
	require.Len(t, got.Revisions, 1)
	assert.Equal(t, "fix formatting", got.Revisions[0].Reason)

	got, err = f.svc.Submit(ctx, g.GigID, workerID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitted, got.Status)
	assert.NotNil(t, got.Revisions[0].ResolvedAt)

	got, err = f.svc.Approve(ctx, g.GigID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
}

func TestCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("within window returns gig to active", func(t *testing.T) {
		f := newFixtures(t)
		workerID := uuid.New()
		acceptedAt := time.Now().UTC().Add(-2 * time.Hour)
		g := &domain.Gig{
			GigID:      uuid.New(),
			OwnerID:    uuid.New(),
			Status:     domain.StatusInProgress,
			AcceptedBy: &workerID,
			AcceptedAt: &acceptedAt,
		}

		f.gigs.EXPECT().GetByID(ctx, g.GigID).Return(g, nil)
		f.gigs.EXPECT().Update(ctx, g).Return(nil)

		got, err := f.svc.Cancel(ctx, g.GigID, workerID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusActive, got.Status)
		assert.Nil(t, got.AcceptedBy)
	})

	t.Run("outside window rejected", func(t *testing.T) {
		f := newFixtures(t)
		workerID := uuid.New()
		acceptedAt := time.Now().UTC().Add(-24 * time.Hour)
		g := &domain.Gig{
			GigID:      uuid.New(),
			OwnerID:    uuid.New(),
			Status:     domain.StatusInProgress,
			AcceptedBy: &workerID,
			AcceptedAt: &acceptedAt,
		}

		f.gigs.EXPECT().GetByID(ctx, g.GigID).Return(g, nil)

		_, err := f.svc.Cancel(ctx, g.GigID, workerID)
		assert.True(t, fault.IsKind(err, fault.KindConflict))
	})
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("update open gig", func(t *testing.T) {
		f := newFixtures(t)
		ownerID := uuid.New()
		g := &domain.Gig{
			GigID:       uuid.New(),
			OwnerID:     ownerID,
			Title:       "Design a logo",
			Description: "A clean vector logo for a coffee shop",
			Price:       15000,
			Category:    "design",
			Status:      domain.StatusActive,
		}
		f.gigs.EXPECT().GetByID(ctx, g.GigID).Return(g, nil)
		f.gigs.EXPECT().Update(ctx, g).Return(nil)

		price := int64(20000)
		got, err := f.svc.Update(ctx, g.GigID, ownerID, UpdateInput{Price: &price})
		require.NoError(t, err)
		assert.Equal(t, int64(20000), got.Price)
	})

	t.Run("update locked once accepted", func(t *testing.T) {
		f := newFixtures(t)
		ownerID := uuid.New()
		g := &domain.Gig{GigID: uuid.New(), OwnerID: ownerID, Status: domain.StatusInProgress}
		f.gigs.EXPECT().GetByID(ctx, g.GigID).Return(g, nil)

		title := "New title"
		_, err := f.svc.Update(ctx, g.GigID, ownerID, UpdateInput{Title: &title})
		assert.True(t, fault.IsKind(err, fault.KindConflict))
	})

	t.Run("delete owner only", func(t *testing.T) {
		f := newFixtures(t)
		g := &domain.Gig{GigID: uuid.New(), OwnerID: uuid.New(), Status: domain.StatusActive}
		f.gigs.EXPECT().GetByID(ctx, g.GigID).Return(g, nil)

		err := f.svc.Delete(ctx, g.GigID, uuid.New())
		assert.True(t, fault.IsKind(err, fault.KindForbidden))
	})
}
