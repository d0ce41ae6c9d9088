package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"nolofication/internal/domain/entity"
	"nolofication/internal/repository"
	"nolofication/internal/usecase/dispatch"
	"nolofication/internal/usecase/prefs"
)

// CancelledRetention is how long soft-cancelled entries stay visible
// before the purge removes them.
const CancelledRetention = 7 * 24 * time.Hour

// Service manages the deferred-notification queue.
type Service interface {
	// Enqueue stores a notification for delivery at scheduledFor (UTC).
	Enqueue(ctx context.Context, p *entity.PendingNotification) error

	// Cancel soft-cancels one of the user's pending entries. Returns
	// ErrAlreadyCancelled if it was cancelled before and
	// ErrPendingNotFound if it does not exist or belongs to someone else.
	Cancel(ctx context.Context, userID, pendingID int64) error

	// ListPending returns the user's queue, optionally including
	// soft-cancelled entries.
	ListPending(ctx context.Context, userID int64, includeCancelled bool) ([]*entity.PendingNotification, error)

	// DrainDue dispatches every entry due at now. Preferences are
	// re-resolved at delivery time, so changes made while an entry sat in
	// the queue take effect. Successfully dispatched entries are deleted;
	// failed ones stay queued for the next pass. Returns the number of
	// entries dispatched.
	DrainDue(ctx context.Context, now time.Time) (int, error)

	// PurgeStaleCancelled removes cancelled entries older than the
	// retention window and returns how many were removed.
	PurgeStaleCancelled(ctx context.Context, now time.Time) (int64, error)
}

type service struct {
	pending    repository.PendingNotificationRepository
	users      repository.UserRepository
	prefs      prefs.Service
	dispatcher dispatch.Service
}

// NewService creates a queue service. The dispatcher and preference
// service are used by DrainDue to deliver due entries.
func NewService(
	pending repository.PendingNotificationRepository,
	users repository.UserRepository,
	prefService prefs.Service,
	dispatcher dispatch.Service,
) Service {
	return &service{
		pending:    pending,
		users:      users,
		prefs:      prefService,
		dispatcher: dispatcher,
	}
}

func (s *service) Enqueue(ctx context.Context, p *entity.PendingNotification) error {
	if p == nil || p.UserID <= 0 || p.SiteID <= 0 {
		return fmt.Errorf("Enqueue: %w", entity.ErrInvalidInput)
	}
	if err := entity.ValidateNotificationType(p.Type); err != nil {
		return fmt.Errorf("Enqueue: %w", err)
	}

	p.ScheduledFor = p.ScheduledFor.UTC()
	if err := s.pending.Create(ctx, p); err != nil {
		return fmt.Errorf("Enqueue: %w", err)
	}

	slog.Info("notification enqueued",
		slog.Int64("pending_id", p.ID),
		slog.Int64("user_id", p.UserID),
		slog.Time("scheduled_for", p.ScheduledFor))
	return nil
}

func (s *service) Cancel(ctx context.Context, userID, pendingID int64) error {
	n, err := s.pending.Cancel(ctx, userID, pendingID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("Cancel: %w", err)
	}
	if n > 0 {
		slog.Info("pending notification cancelled",
			slog.Int64("pending_id", pendingID),
			slog.Int64("user_id", userID))
		return nil
	}

	// Zero rows: distinguish "already cancelled" from "not yours / gone".
	existing, err := s.pending.Get(ctx, pendingID)
	if err != nil {
		return fmt.Errorf("Cancel: %w", err)
	}
	if existing == nil || existing.UserID != userID {
		return fmt.Errorf("Cancel: %w", ErrPendingNotFound)
	}
	return fmt.Errorf("Cancel: %w", ErrAlreadyCancelled)
}

func (s *service) ListPending(ctx context.Context, userID int64, includeCancelled bool) ([]*entity.PendingNotification, error) {
	pendings, err := s.pending.ListByUser(ctx, userID, includeCancelled)
	if err != nil {
		return nil, fmt.Errorf("ListPending: %w", err)
	}
	return pendings, nil
}

func (s *service) DrainDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.pending.ListDue(ctx, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("DrainDue: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	slog.Info("draining due notifications", slog.Int("count", len(due)))

	dispatched := 0
	for _, p := range due {
		if err := s.deliver(ctx, p); err != nil {
			slog.Warn("due notification delivery failed, left queued",
				slog.Int64("pending_id", p.ID),
				slog.Int64("user_id", p.UserID),
				slog.Any("error", err))
			continue
		}
		dispatched++
	}
	return dispatched, nil
}

func (s *service) deliver(ctx context.Context, p *entity.PendingNotification) error {
	user, err := s.users.Get(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		// Owner vanished; the entry can never deliver. Drop it.
		slog.Warn("dropping pending notification for missing user",
			slog.Int64("pending_id", p.ID),
			slog.Int64("user_id", p.UserID))
		return s.pending.Delete(ctx, p.ID)
	}

	resolved, err := s.prefs.Resolve(ctx, p.UserID, p.SiteID)
	if err != nil {
		return fmt.Errorf("resolve preferences: %w", err)
	}

	if _, err := s.dispatcher.Dispatch(ctx, user, p.SiteID, p.Content(), resolved); err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}

	// Delete only after a recorded dispatch. A crash between dispatch and
	// delete redelivers on the next pass (at-least-once).
	if err := s.pending.Delete(ctx, p.ID); err != nil {
		return fmt.Errorf("delete delivered entry: %w", err)
	}
	return nil
}

func (s *service) PurgeStaleCancelled(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.UTC().Add(-CancelledRetention)
	n, err := s.pending.PurgeCancelledBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("PurgeStaleCancelled: %w", err)
	}
	if n > 0 {
		slog.Info("purged stale cancelled notifications", slog.Int64("count", n))
	}
	return n, nil
}
