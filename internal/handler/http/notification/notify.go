package notification

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"nolofication/internal/domain/entity"
	httpmetrics "nolofication/internal/handler/http"
	"nolofication/internal/handler/http/auth"
	"nolofication/internal/handler/http/respond"
	"nolofication/internal/observability/logging"
	"nolofication/internal/usecase/notify"
)

// NotifyHandler accepts notifications from an authenticated site.
type NotifyHandler struct {
	Svc    notify.Service
	Logger *slog.Logger
}

// ServeHTTP 通知送信
// @Summary      通知の送信（単発・一括）
// @Description  認証済みサイトからユーザーへ通知を送信します。user_ids を指定すると一括送信になります。配信は即時またはスケジュール設定に従って遅延されます。
// @Tags         notifications
// @Security     ApiKeyAuth
// @Accept       json
// @Produce      json
// @Param        siteKey path string true "サイトキー"
// @Success      200 {object} OutcomeDTO "単発送信の結果（status は sent / scheduled / skipped）"
// @Failure      400 {string} string "Invalid request body"
// @Failure      401 {string} string "Missing or invalid API key"
// @Failure      404 {string} string "User not found"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /api/sites/{siteKey}/notify [post]
func (h NotifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithRequestID(ctx, h.Logger)

	site, ok := siteForRequest(w, r)
	if !ok {
		return
	}

	var req notifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeErrorV2(w, http.StatusBadRequest,
			respond.NewAppError(http.StatusBadRequest, "invalid request body", err))
		return
	}

	// A non-empty user_ids makes this a bulk batch; user_id and user_ids
	// are mutually exclusive.
	if len(req.UserIDs) > 0 {
		if req.UserID != 0 {
			respond.SafeErrorV2(w, http.StatusBadRequest,
				respond.NewAppError(http.StatusBadRequest, "user_id and user_ids are mutually exclusive", nil))
			return
		}
		h.bulk(w, r, site, req, logger)
		return
	}

	if req.UserID == 0 {
		respond.SafeErrorV2(w, http.StatusBadRequest,
			respond.NewAppError(http.StatusBadRequest, "user_id is required", nil))
		return
	}

	outcome, err := h.Svc.Notify(ctx, site, req.UserID, req.content())
	if err != nil {
		httpmetrics.RecordNotifyOutcome("failed")
		writeNotifyError(w, logger, err)
		return
	}

	httpmetrics.RecordNotifyOutcome(string(outcome.Status))
	logger.Info("notification accepted",
		slog.String("site", site.Key),
		slog.Int64("user_id", req.UserID),
		slog.String("status", string(outcome.Status)))
	respond.JSON(w, http.StatusOK, outcomeDTO(outcome))
}

func (h NotifyHandler) bulk(w http.ResponseWriter, r *http.Request, site *entity.Site, req notifyRequest, logger *slog.Logger) {
	bulk, err := h.Svc.BulkNotify(r.Context(), site, req.UserIDs, req.content())
	if err != nil {
		httpmetrics.RecordNotifyOutcome("failed")
		writeNotifyError(w, logger, err)
		return
	}

	for _, u := range bulk.PerUser {
		if u.Err != nil {
			httpmetrics.RecordNotifyOutcome("failed")
			continue
		}
		httpmetrics.RecordNotifyOutcome(string(u.Outcome.Status))
	}

	logger.Info("bulk notification accepted",
		slog.String("site", site.Key),
		slog.Int("total", bulk.Total),
		slog.Int("failed", bulk.Failed))
	respond.JSON(w, http.StatusOK, bulkOutcomeDTO(bulk))
}

// siteForRequest returns the authenticated site and verifies that it
// matches the site key addressed in the URL. A site can only act on its
// own resources.
func siteForRequest(w http.ResponseWriter, r *http.Request) (*entity.Site, bool) {
	site, ok := auth.SiteFromContext(r.Context())
	if !ok {
		respond.SafeErrorV2(w, http.StatusUnauthorized,
			respond.NewAppError(http.StatusUnauthorized, "unauthorized", errors.New("no site in request context")))
		return nil, false
	}
	if key := r.PathValue("siteKey"); key != site.Key {
		respond.SafeErrorV2(w, http.StatusForbidden,
			respond.NewAppError(http.StatusForbidden, "forbidden", nil))
		return nil, false
	}
	return site, true
}

// writeNotifyError maps usecase errors to HTTP status codes.
func writeNotifyError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var validationErr *entity.ValidationError
	switch {
	case errors.Is(err, notify.ErrUserNotFound):
		respond.SafeErrorV2(w, http.StatusNotFound,
			respond.NewAppError(http.StatusNotFound, "user not found", err))
	case errors.As(err, &validationErr):
		respond.SafeErrorV2(w, http.StatusBadRequest,
			respond.NewAppError(http.StatusBadRequest, validationErr.Error(), err))
	case errors.Is(err, notify.ErrQueueWrite):
		logger.Error("queue write failed", slog.Any("error", err))
		respond.SafeErrorV2(w, http.StatusInternalServerError,
			respond.NewAppError(http.StatusInternalServerError, "internal server error", err))
	default:
		logger.Error("notify failed", slog.Any("error", err))
		respond.SafeErrorV2(w, http.StatusInternalServerError,
			respond.NewAppError(http.StatusInternalServerError, "internal server error", err))
	}
}

// userFacingError reduces a per-user bulk error to the safe message
// embedded in the bulk response.
func userFacingError(err error) string {
	var validationErr *entity.ValidationError
	switch {
	case errors.Is(err, notify.ErrUserNotFound):
		return "user not found"
	case errors.As(err, &validationErr):
		return validationErr.Error()
	case errors.Is(err, notify.ErrQueueWrite):
		return "queue write failed"
	default:
		return "internal error"
	}
}
