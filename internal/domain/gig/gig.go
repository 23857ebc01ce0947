package gig

import (
	"time"

	"github.com/google/uuid"

	"github.com/gigboard/gigboard/internal/domain/fault"
)

// Status represents gig lifecycle status.
type Status string

const (
	StatusActive     Status = "active"
	StatusInactive   Status = "inactive"
	StatusInProgress Status = "in_progress"
	StatusSubmitted  Status = "submitted"
	StatusInRevision Status = "in_revision"
	StatusCompleted  Status = "completed"
)

const (
	// AcceptanceWindow is the fixed period the worker has to submit after
	// accepting.
	AcceptanceWindow = 7 * 24 * time.Hour

	// MinCancellableWindow: acceptances with a shorter window cannot be
	// cancelled at all.
	MinCancellableWindow = time.Hour

	// CancelElapsedFraction: cancellation is allowed only while elapsed
	// time stays within this fraction of the acceptance window.
	CancelElapsedFraction = 0.05

	// DefaultMaxRevisions bounds how many times the poster may send a
	// submission back.
	DefaultMaxRevisions = 2
)

// RevisionRequest is one entry in the gig's revision history.
type RevisionRequest struct {
	Reason      string     `json:"reason"`
	RequestedAt time.Time  `json:"requestedAt"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
}

// Gig is a posted task with a fixed price, owned by its poster and
// acceptable by exactly one other user at a time.
type Gig struct {
	ID            int64             `json:"id"`
	GigID         uuid.UUID         `json:"gigId"`
	OwnerID       uuid.UUID         `json:"ownerId"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Images        []string          `json:"images"`
	Price         int64             `json:"price"`
	Category      string            `json:"category"`
	Status        Status            `json:"status"`
	TimeLimit     *time.Time        `json:"timeLimit,omitempty"`
	AcceptedBy    *uuid.UUID        `json:"acceptedBy,omitempty"`
	AcceptedAt    *time.Time        `json:"acceptedAt,omitempty"`
	SubmittedAt   *time.Time        `json:"submittedAt,omitempty"`
	CompletedAt   *time.Time        `json:"completedAt,omitempty"`
	RevisionCount int               `json:"revisionCount"`
	MaxRevisions  int               `json:"maxRevisions"`
	Revisions     []RevisionRequest `json:"revisions"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// CanTransitionTo validates a status transition.
func (g *Gig) CanTransitionTo(target Status) bool {
	transitions := map[Status][]Status{
		StatusActive:     {StatusInProgress, StatusInactive},
		StatusInactive:   {},
		StatusInProgress: {StatusSubmitted, StatusActive, StatusInactive},
		StatusSubmitted:  {StatusCompleted, StatusInRevision, StatusInactive},
		StatusInRevision: {StatusSubmitted, StatusActive, StatusInactive},
		StatusCompleted:  {},
	}
	allowed := transitions[g.Status]
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// Expired reports whether the gig's time limit has passed.
func (g *Gig) Expired(now time.Time) bool {
	return g.TimeLimit != nil && now.After(*g.TimeLimit)
}

// Expire marks an expired gig inactive. Completed gigs are left alone.
func (g *Gig) Expire(now time.Time) {
	if g.Status == StatusCompleted {
		return
	}
	g.Status = StatusInactive
	g.UpdatedAt = now
}

// Accept assigns the gig to a worker.
func (g *Gig) Accept(workerID uuid.UUID, now time.Time) error {
	if workerID == g.OwnerID {
		return fault.New(fault.KindForbidden, "you cannot accept your own gig")
	}
	if g.AcceptedBy != nil && *g.AcceptedBy == workerID {
		return fault.New(fault.KindConflict, "you have already accepted this gig")
	}
	if g.Status != StatusActive {
		return fault.New(fault.KindConflict, "this gig is no longer available")
	}
	if g.Expired(now) {
		return fault.New(fault.KindConflict, "this gig has expired")
	}
	g.Status = StatusInProgress
	g.AcceptedBy = &workerID
	g.AcceptedAt = &now
	g.UpdatedAt = now
	return nil
}

// Submit records the worker turning in the work.
func (g *Gig) Submit(callerID uuid.UUID, now time.Time) error {
	if g.AcceptedBy == nil || *g.AcceptedBy != callerID {
		return fault.New(fault.KindForbidden, "only the accepted worker can submit this gig")
	}
	if g.Status == StatusCompleted {
		return fault.New(fault.KindConflict, "this gig is already completed")
	}
	if !g.CanTransitionTo(StatusSubmitted) {
		return fault.Newf(fault.KindConflict, "gig cannot be submitted from status %q", g.Status)
	}
	if g.Expired(now) {
		g.Expire(now)
		return fault.New(fault.KindConflict, "time limit exceeded, the gig can no longer be submitted")
	}
	g.Status = StatusSubmitted
	g.SubmittedAt = &now
	// A resubmission closes the open revision request.
	for i := range g.Revisions {
		if g.Revisions[i].ResolvedAt == nil {
			resolved := now
			g.Revisions[i].ResolvedAt = &resolved
		}
	}
	g.UpdatedAt = now
	return nil
}

// Approve is the poster accepting the submitted work. The caller is
// responsible for sealing the conversation afterwards.
func (g *Gig) Approve(callerID uuid.UUID, now time.Time) error {
	if callerID != g.OwnerID {
		return fault.New(fault.KindForbidden, "only the gig owner can approve a submission")
	}
	if !g.CanTransitionTo(StatusCompleted) {
		return fault.Newf(fault.KindConflict, "gig cannot be approved from status %q", g.Status)
	}
	g.Status = StatusCompleted
	g.CompletedAt = &now
	g.UpdatedAt = now
	return nil
}

// RequestRevision sends a submission back to the worker.
func (g *Gig) RequestRevision(callerID uuid.UUID, reason string, now time.Time) error {
	if callerID != g.OwnerID {
		return fault.New(fault.KindForbidden, "only the gig owner can request a revision")
	}
	if reason == "" {
		return fault.New(fault.KindInvalid, "revision reason is required")
	}
	if g.Status != StatusSubmitted {
		return fault.Newf(fault.KindConflict, "revision can only be requested on a submitted gig, status is %q", g.Status)
	}
	if g.RevisionCount >= g.MaxRevisions {
		return fault.Newf(fault.KindConflict, "revision budget exhausted (%d of %d used)", g.RevisionCount, g.MaxRevisions)
	}
	g.Status = StatusInRevision
	g.RevisionCount++
	g.Revisions = append(g.Revisions, RevisionRequest{
		Reason:      reason,
		RequestedAt: now,
	})
	g.UpdatedAt = now
	return nil
}

// CancelAcceptance releases the worker from the gig. Allowed only while
// the acceptance window exceeds one hour and no more than 5% of it has
// elapsed; the check happens lazily when the cancel request arrives.
func (g *Gig) CancelAcceptance(callerID uuid.UUID, now time.Time) error {
	if g.AcceptedBy == nil || *g.AcceptedBy != callerID {
		return fault.New(fault.KindForbidden, "you have not accepted this gig")
	}
	if g.Status == StatusCompleted {
		return fault.New(fault.KindConflict, "cannot cancel a completed gig")
	}
	if !g.CanTransitionTo(StatusActive) {
		return fault.Newf(fault.KindConflict, "gig cannot be cancelled from status %q", g.Status)
	}
	if AcceptanceWindow <= MinCancellableWindow {
		return fault.New(fault.KindConflict, "gigs with a window of one hour or less cannot be cancelled")
	}
	elapsed := now.Sub(*g.AcceptedAt)
	if float64(elapsed) > float64(AcceptanceWindow)*CancelElapsedFraction {
		return fault.New(fault.KindConflict, "cancellation window has passed")
	}
	g.Status = StatusActive
	g.AcceptedBy = nil
	g.AcceptedAt = nil
	g.UpdatedAt = now
	return nil
}
