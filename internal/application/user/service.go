package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gigboard/gigboard/internal/domain/fault"
	domain "github.com/gigboard/gigboard/internal/domain/user"
)

// Service handles user identity and profile management.
type Service struct {
	repo   domain.Repository
	logger zerolog.Logger
}

// NewService creates a user service.
func NewService(repo domain.Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("service", "user").Logger(),
	}
}

// SyncInput carries the profile fields the auth provider hands over after
// sign-in.
type SyncInput struct {
	Email        string
	FirstName    string
	LastName     string
	ProfileImage string
}

// UpdateInput defines profile update input.
type UpdateInput struct {
	FirstName    *string
	LastName     *string
	ProfileImage *string
}

// EnsureUser returns the user for an externally issued identity, creating
// the row on first authenticated contact.
func (s *Service) EnsureUser(ctx context.Context, externalID string) (*domain.User, error) {
	if externalID == "" {
		return nil, fault.New(fault.KindInvalid, "external id is required")
	}
	u, err := s.repo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}
	u = &domain.User{
		UserID:     uuid.New(),
		ExternalID: externalID,
		Roles:      []domain.Role{domain.RoleBuyer},
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", u.UserID.String()).Msg("user created on first contact")
	return u, nil
}

// Sync is the sign-in-or-sign-up flow: upsert the user under its external
// identity and refresh the profile fields. Reports whether the user was
// newly created.
func (s *Service) Sync(ctx context.Context, externalID string, input SyncInput) (*domain.User, bool, error) {
	if externalID == "" {
		return nil, false, fault.New(fault.KindInvalid, "external id is required")
	}
	u, err := s.repo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, false, err
	}
	if u == nil {
		u = &domain.User{
			UserID:       uuid.New(),
			ExternalID:   externalID,
			Email:        input.Email,
			FirstName:    input.FirstName,
			LastName:     input.LastName,
			ProfileImage: input.ProfileImage,
			Roles:        []domain.Role{domain.RoleBuyer},
			CreatedAt:    time.Now().UTC(),
			UpdatedAt:    time.Now().UTC(),
		}
		if err := s.repo.Create(ctx, u); err != nil {
			return nil, false, err
		}
		s.logger.Info().Str("user_id", u.UserID.String()).Msg("user signed up")
		return u, true, nil
	}
	u.Email = input.Email
	u.FirstName = input.FirstName
	u.LastName = input.LastName
	u.ProfileImage = input.ProfileImage
	u.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, false, err
	}
	return u, false, nil
}

// GetByID returns a user or a NotFound fault.
func (s *Service) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fault.New(fault.KindNotFound, "user not found")
	}
	return u, nil
}

// UpdateProfile applies a partial profile update.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateInput) (*domain.User, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if input.FirstName != nil {
		u.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		u.LastName = *input.LastName
	}
	if input.ProfileImage != nil {
		u.ProfileImage = *input.ProfileImage
	}
	u.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
