package gig

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	domainChat "github.com/gigboard/gigboard/internal/domain/chat"
	"github.com/gigboard/gigboard/internal/domain/fault"
	domain "github.com/gigboard/gigboard/internal/domain/gig"
	domainUser "github.com/gigboard/gigboard/internal/domain/user"
)

// Service drives the gig lifecycle.
type Service struct {
	gigs   domain.Repository
	users  domainUser.Repository
	chats  domainChat.Repository
	logger zerolog.Logger
}

// NewService creates a gig service.
func NewService(gigs domain.Repository, users domainUser.Repository, chats domainChat.Repository, logger zerolog.Logger) *Service {
	return &Service{
		gigs:   gigs,
		users:  users,
		chats:  chats,
		logger: logger.With().Str("service", "gig").Logger(),
	}
}

// CreateInput defines gig creation input.
type CreateInput struct {
	Title       string
	Description string
	Images      []string
	Price       int64
	Category    string
	TimeLimit   *time.Time
}

// UpdateInput defines a partial gig update. Only content fields are
// mutable; lifecycle fields move through transitions.
type UpdateInput struct {
	Title       *string
	Description *string
	Images      []string
	Price       *int64
	Category    *string
	TimeLimit   *time.Time
}

func validateCreate(input CreateInput) error {
	if len(strings.TrimSpace(input.Title)) < 3 {
		return fault.New(fault.KindInvalid, "title must be at least 3 characters")
	}
	if len(strings.TrimSpace(input.Description)) < 10 {
		return fault.New(fault.KindInvalid, "description must be at least 10 characters")
	}
	if input.Price <= 0 {
		return fault.New(fault.KindInvalid, "price must be a positive number")
	}
	if strings.TrimSpace(input.Category) == "" {
		return fault.New(fault.KindInvalid, "category is required")
	}
	return nil
}

// Create posts a new gig owned by the caller.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*domain.Gig, error) {
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, fault.New(fault.KindNotFound, "user not found")
	}
	// Product listers cannot post gigs; this prevents manipulation of
	// product bids.
	if owner.HasRole(domainUser.RoleProductLister) {
		return nil, fault.New(fault.KindForbidden, "product listers cannot create gigs")
	}
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	g := &domain.Gig{
		GigID:        uuid.New(),
		OwnerID:      owner.UserID,
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		Images:       input.Images,
		Price:        input.Price,
		Category:     strings.TrimSpace(input.Category),
		Status:       domain.StatusActive,
		TimeLimit:    input.TimeLimit,
		MaxRevisions: domain.DefaultMaxRevisions,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.gigs.Create(ctx, g); err != nil {
		return nil, err
	}
	s.logger.Info().Str("gig_id", g.GigID.String()).Str("owner_id", owner.UserID.String()).Msg("gig created")
	return g, nil
}

// Get returns a gig or a NotFound fault.
func (s *Service) Get(ctx context.Context, gigID uuid.UUID) (*domain.Gig, error) {
	g, err := s.gigs.GetByID(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fault.New(fault.KindNotFound, "gig not found")
	}
	return g, nil
}

// ListActive returns open gigs for discovery, newest first.
func (s *Service) ListActive(ctx context.Context, limit, offset int) ([]*domain.Gig, error) {
	status := domain.StatusActive
	return s.gigs.List(ctx, domain.Filter{Status: &status}, limit, offset)
}

// ListByOwner returns the caller's posted gigs.
func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.Gig, error) {
	return s.gigs.List(ctx, domain.Filter{OwnerID: &ownerID}, limit, offset)
}

// ListAcceptedBy returns the gigs a worker has accepted.
func (s *Service) ListAcceptedBy(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]*domain.Gig, error) {
	return s.gigs.List(ctx, domain.Filter{AcceptedBy: &workerID}, limit, offset)
}

// Update edits a gig's content fields. Owner only, and only while the gig
// is still open.
func (s *Service) Update(ctx context.Context, gigID, callerID uuid.UUID, input UpdateInput) (*domain.Gig, error) {
	g, err := s.Get(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if g.OwnerID != callerID {
		return nil, fault.New(fault.KindForbidden, "not authorized to update this gig")
	}
	if g.Status != domain.StatusActive {
		return nil, fault.New(fault.KindConflict, "only open gigs can be edited")
	}
	if input.Title != nil {
		g.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		g.Description = *input.Description
	}
	if input.Images != nil {
		g.Images = input.Images
	}
	if input.Price != nil {
		g.Price = *input.Price
	}
	if input.Category != nil {
		g.Category = strings.TrimSpace(*input.Category)
	}
	if input.TimeLimit != nil {
		g.TimeLimit = input.TimeLimit
	}
	if err := validateCreate(CreateInput{
		Title:       g.Title,
		Description: g.Description,
		Price:       g.Price,
		Category:    g.Category,
	}); err != nil {
		return nil, err
	}
	g.UpdatedAt = time.Now().UTC()
	if err := s.gigs.Update(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Delete removes a gig. Owner only; allowed at any status and terminal.
// The acceptor's accepted-gig association is derived from the gig row, so
// it disappears with the row.
func (s *Service) Delete(ctx context.Context, gigID, callerID uuid.UUID) error {
	g, err := s.Get(ctx, gigID)
	if err != nil {
		return err
	}
	if g.OwnerID != callerID {
		return fault.New(fault.KindForbidden, "not authorized to delete this gig")
	}
	if err := s.gigs.Delete(ctx, g.GigID); err != nil {
		return err
	}
	s.logger.Info().Str("gig_id", g.GigID.String()).Msg("gig deleted")
	return nil
}

// Accept assigns the gig to a worker and grants the gig_worker role.
func (s *Service) Accept(ctx context.Context, gigID, workerID uuid.UUID) (*domain.Gig, error) {
	g, err := s.Get(ctx, gigID)
	if err != nil {
		return nil, err
	}
	worker, err := s.users.GetByID(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if worker == nil {
		return nil, fault.New(fault.KindNotFound, "user not found")
	}
	if err := g.Accept(worker.UserID, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.gigs.Update(ctx, g); err != nil {
		return nil, err
	}
	if worker.GrantRole(domainUser.RoleGigWorker) {
		worker.UpdatedAt = time.Now().UTC()
		if err := s.users.Update(ctx, worker); err != nil {
			return nil, err
		}
	}
	s.logger.Info().
		Str("gig_id", g.GigID.String()).
		Str("worker_id", worker.UserID.String()).
		Msg("gig accepted")
	return g, nil
}

// Submit records the worker turning in the work. An expired gig is
// flipped to inactive on this access.
func (s *Service) Submit(ctx context.Context, gigID, callerID uuid.UUID) (*domain.Gig, error) {
	g, err := s.Get(ctx, gigID)
	if err != nil {
		return nil, err
	}
	transitionErr := g.Submit(callerID, time.Now().UTC())
	if transitionErr != nil {
		// The lazy expiry check may have moved the gig to inactive;
		// persist that before reporting the rejection.
		if g.Status == domain.StatusInactive {
			if err := s.gigs.Update(ctx, g); err != nil {
				return nil, err
			}
		}
		return nil, transitionErr
	}
	if err := s.gigs.Update(ctx, g); err != nil {
		return nil, err
	}
	s.logger.Info().Str("gig_id", g.GigID.String()).Msg("gig submitted")
	return g, nil
}

// Approve completes the gig and seals its conversation. The gig update
// and the bulk seal are two sequential writes; the send/read paths treat
// a completed gig as sealed even if the second write was lost, so a crash
// in between is recoverable.
func (s *Service) Approve(ctx context.Context, gigID, callerID uuid.UUID) (*domain.Gig, error) {
	g, err := s.Get(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if err := g.Approve(callerID, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.gigs.Update(ctx, g); err != nil {
		return nil, err
	}
	sealed, err := s.chats.SealByGig(ctx, g.GigID)
	if err != nil {
		s.logger.Error().Err(err).Str("gig_id", g.GigID.String()).Msg("conversation seal failed, will reseal lazily")
	} else {
		s.logger.Info().Str("gig_id", g.GigID.String()).Int64("sealed", sealed).Msg("gig approved, conversation sealed")
	}
	return g, nil
}

// RequestRevision sends a submission back to the worker with a reason.
func (s *Service) RequestRevision(ctx context.Context, gigID, callerID uuid.UUID, reason string) (*domain.Gig, error) {
	g, err := s.Get(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if err := g.RequestRevision(callerID, strings.TrimSpace(reason), time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.gigs.Update(ctx, g); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("gig_id", g.GigID.String()).
		Int("revision_count", g.RevisionCount).
		Msg("revision requested")
	return g, nil
}

// Cancel releases the worker from an accepted gig within the cancellation
// window.
func (s *Service) Cancel(ctx context.Context, gigID, callerID uuid.UUID) (*domain.Gig, error) {
	g, err := s.Get(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if err := g.CancelAcceptance(callerID, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.gigs.Update(ctx, g); err != nil {
		return nil, err
	}
	s.logger.Info().Str("gig_id", g.GigID.String()).Msg("gig acceptance cancelled")
	return g, nil
}
