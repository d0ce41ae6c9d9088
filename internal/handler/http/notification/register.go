package notification

import (
	"log/slog"
	"net/http"

	"nolofication/internal/common/pagination"
	"nolofication/internal/handler/http/auth"
	"nolofication/internal/repository"
	"nolofication/internal/service/identity"
	"nolofication/internal/usecase/notify"
	"nolofication/internal/usecase/queue"
)

// Deps bundles the collaborators of the notification API handlers.
type Deps struct {
	Notify        notify.Service
	Queue         queue.Service
	Notifications repository.NotificationRepository
	Sites         repository.SiteRepository
	Users         repository.UserRepository
	Identity      *identity.Service
	PaginationCfg pagination.Config
	APIKeyHeader  string
	Logger        *slog.Logger
}

// Register registers all notification-related HTTP handlers with the
// given mux. Site-scoped routes authenticate with the API key header,
// user-scoped history routes with a bearer token.
func Register(mux *http.ServeMux, d Deps) {
	siteAuth := auth.SiteAuth(d.Sites, d.APIKeyHeader)
	userAuth := auth.UserAuth(d.Identity, d.Users)

	mux.Handle("POST   /api/sites/{siteKey}/notify", siteAuth(NotifyHandler{
		Svc:    d.Notify,
		Logger: d.Logger,
	}))
	mux.Handle("GET    /api/sites/{siteKey}/pending", siteAuth(PendingListHandler{
		Svc:           d.Queue,
		PaginationCfg: d.PaginationCfg,
		Logger:        d.Logger,
	}))
	mux.Handle("DELETE /api/sites/{siteKey}/pending/{id}", siteAuth(PendingCancelHandler{
		Svc:    d.Queue,
		Logger: d.Logger,
	}))

	mux.Handle("GET    /api/notifications", userAuth(HistoryHandler{
		Repo:          d.Notifications,
		PaginationCfg: d.PaginationCfg,
		Logger:        d.Logger,
	}))
	mux.Handle("POST   /api/notifications/{id}/read", userAuth(MarkReadHandler{
		Repo:   d.Notifications,
		Logger: d.Logger,
	}))
	mux.Handle("POST   /api/notifications/read-all", userAuth(MarkAllReadHandler{
		Repo:   d.Notifications,
		Logger: d.Logger,
	}))
}
