package notification

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"nolofication/internal/common/pagination"
	"nolofication/internal/domain/entity"
	"nolofication/internal/handler/http/auth"
	"nolofication/internal/handler/http/pathutil"
	"nolofication/internal/handler/http/requestid"
	"nolofication/internal/handler/http/respond"
	"nolofication/internal/observability/logging"
	"nolofication/internal/repository"
)

// HistoryHandler lists the authenticated user's notification history.
type HistoryHandler struct {
	Repo          repository.NotificationRepository
	PaginationCfg pagination.Config
	Logger        *slog.Logger
}

// ServeHTTP 通知履歴取得
// @Summary      通知履歴一覧（ページネーション対応）
// @Description  認証済みユーザーの通知履歴を新しい順に取得します。
// @Tags         history
// @Security     BearerAuth
// @Produce      json
// @Param        page  query int false "ページ番号 (1-based)" default(1) minimum(1)
// @Param        limit query int false "1ページあたりの件数" default(20) minimum(1) maximum(100)
// @Success      200 {object} pagination.Response[HistoryDTO] "ページネーション付き通知履歴"
// @Failure      400 {string} string "Invalid query parameters"
// @Failure      401 {string} string "Authentication required - missing or invalid bearer token"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /api/notifications [get]
func (h HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()
	logger := logging.WithRequestID(ctx, h.Logger)

	user, ok := userForRequest(w, r)
	if !ok {
		return
	}

	reqID := requestid.FromContext(ctx)

	params, err := pagination.ParseQueryParams(r, h.PaginationCfg)
	if err != nil {
		pagination.RecordError("validation")
		pagination.LogError(logger, reqID, params, err, "validation")
		respond.SafeErrorV2(w, http.StatusBadRequest,
			respond.NewAppError(http.StatusBadRequest, err.Error(), err))
		return
	}

	offset := pagination.CalculateOffset(params.Page, params.Limit)

	notifications, err := h.Repo.ListByUserPaginated(ctx, user.ID, offset, params.Limit)
	if err != nil {
		logger.Error("failed to list notification history",
			slog.Int64("user_id", user.ID),
			slog.Any("error", err))
		pagination.RecordError("database")
		respond.SafeErrorV2(w, http.StatusInternalServerError,
			respond.NewAppError(http.StatusInternalServerError, "internal server error", err))
		return
	}

	total, err := h.Repo.CountByUser(ctx, user.ID)
	if err != nil {
		logger.Error("failed to count notification history",
			slog.Int64("user_id", user.ID),
			slog.Any("error", err))
		pagination.RecordError("database")
		respond.SafeErrorV2(w, http.StatusInternalServerError,
			respond.NewAppError(http.StatusInternalServerError, "internal server error", err))
		return
	}

	dtos := make([]HistoryDTO, 0, len(notifications))
	for _, n := range notifications {
		dtos = append(dtos, historyDTO(n))
	}

	metadata := pagination.Metadata{
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: pagination.CalculateTotalPages(total, params.Limit),
	}

	duration := time.Since(startTime)
	pagination.RecordRequest(http.StatusOK, params.Page)
	pagination.RecordDuration("handler", duration.Seconds())
	pagination.UpdateTotalCount(total)
	pagination.LogResponse(logger, reqID, params, len(dtos), duration, http.StatusOK)

	respond.JSON(w, http.StatusOK, pagination.NewResponse(dtos, metadata))
}

// MarkReadHandler flags a single notification as read.
type MarkReadHandler struct {
	Repo   repository.NotificationRepository
	Logger *slog.Logger
}

// ServeHTTP 通知既読化
// @Summary      通知を既読にする
// @Tags         history
// @Security     BearerAuth
// @Param        id path int true "通知ID"
// @Success      204 {string} string "既読化完了"
// @Failure      400 {string} string "Invalid notification id"
// @Failure      401 {string} string "Authentication required"
// @Failure      404 {string} string "Notification not found"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /api/notifications/{id}/read [post]
func (h MarkReadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithRequestID(ctx, h.Logger)

	user, ok := userForRequest(w, r)
	if !ok {
		return
	}

	notificationID, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.SafeErrorV2(w, http.StatusBadRequest,
			respond.NewAppError(http.StatusBadRequest, "invalid notification id", err))
		return
	}

	if err := h.Repo.MarkRead(ctx, user.ID, notificationID); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			respond.SafeErrorV2(w, http.StatusNotFound,
				respond.NewAppError(http.StatusNotFound, "notification not found", err))
			return
		}
		logger.Error("failed to mark notification read",
			slog.Int64("user_id", user.ID),
			slog.Int64("notification_id", notificationID),
			slog.Any("error", err))
		respond.SafeErrorV2(w, http.StatusInternalServerError,
			respond.NewAppError(http.StatusInternalServerError, "internal server error", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkAllReadHandler flags the user's entire history as read.
type MarkAllReadHandler struct {
	Repo   repository.NotificationRepository
	Logger *slog.Logger
}

// ServeHTTP 全通知既読化
// @Summary      すべての通知を既読にする
// @Tags         history
// @Security     BearerAuth
// @Success      204 {string} string "既読化完了"
// @Failure      401 {string} string "Authentication required"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /api/notifications/read-all [post]
func (h MarkAllReadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithRequestID(ctx, h.Logger)

	user, ok := userForRequest(w, r)
	if !ok {
		return
	}

	if err := h.Repo.MarkAllRead(ctx, user.ID); err != nil {
		logger.Error("failed to mark all notifications read",
			slog.Int64("user_id", user.ID),
			slog.Any("error", err))
		respond.SafeErrorV2(w, http.StatusInternalServerError,
			respond.NewAppError(http.StatusInternalServerError, "internal server error", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// userForRequest returns the authenticated user set by the UserAuth
// middleware.
func userForRequest(w http.ResponseWriter, r *http.Request) (*entity.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		respond.SafeErrorV2(w, http.StatusUnauthorized,
			respond.NewAppError(http.StatusUnauthorized, "unauthorized", errors.New("no user in request context")))
		return nil, false
	}
	return user, true
}
