package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"nolofication/internal/domain/entity"
	"nolofication/internal/repository"
	"nolofication/internal/usecase/dispatch"
	"nolofication/internal/usecase/prefs"
	"nolofication/internal/usecase/queue"
	"nolofication/internal/usecase/schedule"
)

// Status describes what happened to one notification request.
type Status string

const (
	// StatusSent means the notification was dispatched immediately.
	StatusSent Status = "sent"

	// StatusScheduled means the notification was queued for later delivery.
	StatusScheduled Status = "scheduled"

	// StatusSkipped means the user has disabled the category; nothing was
	// delivered or queued.
	StatusSkipped Status = "skipped"
)

// Outcome is the result of one Notify call.
type Outcome struct {
	// Status is one of "sent", "scheduled" or "skipped". Callers that
	// only expect the first two must treat "skipped" as a no-op: the
	// category was disabled and nothing reached any channel or the queue.
	Status Status

	// Channels holds the per-channel results when Status is "sent".
	Channels entity.ChannelResult

	// PendingID and DueAt are set when Status is "scheduled".
	PendingID int64
	DueAt     time.Time
}

// UserOutcome pairs one bulk-batch user with their individual result.
type UserOutcome struct {
	UserID  int64
	Outcome *Outcome
	Err     error
}

// BulkOutcome aggregates a bulk notification batch.
type BulkOutcome struct {
	Total      int
	Successful int
	Scheduled  int
	Skipped    int
	Failed     int
	PerUser    []UserOutcome
}

// Service is the notification entry point consumed by the request layer.
type Service interface {
	// Notify delivers one notification to one user on behalf of a site.
	// Depending on the user's resolved schedule for the content's
	// category it either dispatches immediately or enqueues for later.
	//
	// An unknown category key falls back to immediate delivery; a
	// category the user disabled yields StatusSkipped. Enqueue failures
	// are returned wrapped in ErrQueueWrite.
	Notify(ctx context.Context, site *entity.Site, userID int64, content entity.NotificationContent) (*Outcome, error)

	// BulkNotify calls Notify for every user in the batch. One user's
	// failure (unknown user, queue write error) never aborts the rest;
	// every user gets a slot in the per-user results.
	BulkNotify(ctx context.Context, site *entity.Site, userIDs []int64, content entity.NotificationContent) (*BulkOutcome, error)
}

type service struct {
	users      repository.UserRepository
	categories repository.CategoryRepository
	prefs      prefs.Service
	schedules  schedule.Service
	dispatcher dispatch.Service
	queue      queue.Service

	now func() time.Time
}

// NewService creates the notify entry point over its collaborators.
func NewService(
	users repository.UserRepository,
	categories repository.CategoryRepository,
	prefService prefs.Service,
	schedules schedule.Service,
	dispatcher dispatch.Service,
	queueService queue.Service,
) Service {
	return &service{
		users:      users,
		categories: categories,
		prefs:      prefService,
		schedules:  schedules,
		dispatcher: dispatcher,
		queue:      queueService,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Notify(ctx context.Context, site *entity.Site, userID int64, content entity.NotificationContent) (*Outcome, error) {
	if site == nil {
		return nil, fmt.Errorf("Notify: %w", ErrSiteNotFound)
	}
	if content.Title == "" {
		return nil, fmt.Errorf("Notify: %w", &entity.ValidationError{Field: "title", Message: "title is required"})
	}
	if content.Type == "" {
		content.Type = entity.TypeInfo
	}
	if err := entity.ValidateNotificationType(content.Type); err != nil {
		return nil, fmt.Errorf("Notify: %w", err)
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Notify: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("Notify: %w", ErrUserNotFound)
	}

	now := s.now()
	dueAt := now

	// Only a known category can defer delivery; an empty or unknown key
	// always means immediate.
	if content.CategoryKey != "" {
		category, err := s.categories.GetByKey(ctx, site.ID, content.CategoryKey)
		if err != nil {
			return nil, fmt.Errorf("Notify: %w", err)
		}
		if category != nil {
			enabled, err := s.prefs.CategoryEnabled(ctx, userID, category.ID)
			if err != nil {
				return nil, fmt.Errorf("Notify: %w", err)
			}
			if !enabled {
				slog.Debug("notification skipped, category disabled",
					slog.Int64("user_id", userID),
					slog.String("category", content.CategoryKey))
				return &Outcome{Status: StatusSkipped}, nil
			}

			dueAt, err = s.schedules.NextDue(ctx, userID, category, now)
			if err != nil {
				return nil, fmt.Errorf("Notify: %w", err)
			}
		}
	}

	if dueAt.After(now) {
		pending := &entity.PendingNotification{
			UserID:       userID,
			SiteID:       site.ID,
			Title:        content.Title,
			Message:      content.Message,
			HTMLMessage:  content.HTMLMessage,
			Type:         content.Type,
			CategoryKey:  content.CategoryKey,
			Metadata:     content.Metadata,
			ScheduledFor: dueAt,
		}
		if err := s.queue.Enqueue(ctx, pending); err != nil {
			return nil, fmt.Errorf("Notify: %w: %w", ErrQueueWrite, err)
		}
		return &Outcome{Status: StatusScheduled, PendingID: pending.ID, DueAt: dueAt}, nil
	}

	resolved, err := s.prefs.Resolve(ctx, userID, site.ID)
	if err != nil {
		return nil, fmt.Errorf("Notify: %w", err)
	}
	result, err := s.dispatcher.Dispatch(ctx, user, site.ID, content, resolved)
	if err != nil {
		return nil, fmt.Errorf("Notify: %w", err)
	}
	return &Outcome{Status: StatusSent, Channels: result}, nil
}

func (s *service) BulkNotify(ctx context.Context, site *entity.Site, userIDs []int64, content entity.NotificationContent) (*BulkOutcome, error) {
	if site == nil {
		return nil, fmt.Errorf("BulkNotify: %w", ErrSiteNotFound)
	}

	bulk := &BulkOutcome{
		Total:   len(userIDs),
		PerUser: make([]UserOutcome, 0, len(userIDs)),
	}
	for _, userID := range userIDs {
		outcome, err := s.Notify(ctx, site, userID, content)
		if err != nil {
			bulk.Failed++
			bulk.PerUser = append(bulk.PerUser, UserOutcome{UserID: userID, Err: err})
			slog.Warn("bulk notify item failed",
				slog.Int64("user_id", userID),
				slog.Int64("site_id", site.ID),
				slog.Any("error", err))
			continue
		}
		switch outcome.Status {
		case StatusSent:
			bulk.Successful++
		case StatusScheduled:
			bulk.Scheduled++
		case StatusSkipped:
			bulk.Skipped++
		}
		bulk.PerUser = append(bulk.PerUser, UserOutcome{UserID: userID, Outcome: outcome})
	}

	slog.Info("bulk notify completed",
		slog.Int64("site_id", site.ID),
		slog.Int("total", bulk.Total),
		slog.Int("successful", bulk.Successful),
		slog.Int("scheduled", bulk.Scheduled),
		slog.Int("skipped", bulk.Skipped),
		slog.Int("failed", bulk.Failed))
	return bulk, nil
}
