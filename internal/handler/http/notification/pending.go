package notification

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"nolofication/internal/common/pagination"
	"nolofication/internal/handler/http/pathutil"
	"nolofication/internal/handler/http/respond"
	"nolofication/internal/observability/logging"
	"nolofication/internal/usecase/queue"
)

// PendingListHandler lists a user's deferred notifications for the
// calling site.
type PendingListHandler struct {
	Svc           queue.Service
	PaginationCfg pagination.Config
	Logger        *slog.Logger
}

// ServeHTTP 保留通知一覧取得
// @Summary      保留中の通知一覧（ページネーション対応）
// @Description  指定ユーザーのスケジュール済み通知を予定時刻順に取得します。include_cancelled=true でキャンセル済みも含めます。
// @Tags         pending
// @Security     ApiKeyAuth
// @Produce      json
// @Param        siteKey path  string true  "サイトキー"
// @Param        user_id query int    true  "ユーザーID"
// @Param        page    query int    false "ページ番号 (1-based)" default(1) minimum(1)
// @Param        limit   query int    false "1ページあたりの件数" default(20) minimum(1) maximum(100)
// @Param        include_cancelled query bool false "キャンセル済みを含める"
// @Success      200 {object} pagination.Response[PendingDTO] "ページネーション付き保留通知一覧"
// @Failure      400 {string} string "Invalid query parameters"
// @Failure      401 {string} string "Missing or invalid API key"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /api/sites/{siteKey}/pending [get]
func (h PendingListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithRequestID(ctx, h.Logger)

	site, ok := siteForRequest(w, r)
	if !ok {
		return
	}

	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		respond.SafeErrorV2(w, http.StatusBadRequest,
			respond.NewAppError(http.StatusBadRequest, "user_id query parameter is required", err))
		return
	}

	params, err := pagination.ParseQueryParams(r, h.PaginationCfg)
	if err != nil {
		pagination.RecordError("validation")
		respond.SafeErrorV2(w, http.StatusBadRequest,
			respond.NewAppError(http.StatusBadRequest, err.Error(), err))
		return
	}

	includeCancelled := r.URL.Query().Get("include_cancelled") == "true"

	entries, err := h.Svc.ListPending(ctx, userID, includeCancelled)
	if err != nil {
		logger.Error("failed to list pending notifications",
			slog.Int64("user_id", userID),
			slog.Any("error", err))
		pagination.RecordError("database")
		respond.SafeErrorV2(w, http.StatusInternalServerError,
			respond.NewAppError(http.StatusInternalServerError, "internal server error", err))
		return
	}

	// The queue is user-scoped; narrow it to entries the calling site owns.
	owned := entries[:0:0]
	for _, p := range entries {
		if p.SiteID == site.ID {
			owned = append(owned, p)
		}
	}

	// The queue per user stays small (tens of entries), so the page
	// window is cut from the full slice rather than pushed into SQL.
	total := int64(len(owned))
	offset := pagination.CalculateOffset(params.Page, params.Limit)
	dtos := make([]PendingDTO, 0, params.Limit)
	for i := offset; i < len(owned) && i < offset+params.Limit; i++ {
		dtos = append(dtos, pendingDTO(owned[i]))
	}

	metadata := pagination.Metadata{
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: pagination.CalculateTotalPages(total, params.Limit),
	}
	pagination.RecordRequest(http.StatusOK, params.Page)
	respond.JSON(w, http.StatusOK, pagination.NewResponse(dtos, metadata))
}

// PendingCancelHandler cancels one deferred notification before it fires.
type PendingCancelHandler struct {
	Svc    queue.Service
	Logger *slog.Logger
}

// ServeHTTP 保留通知キャンセル
// @Summary      保留中の通知のキャンセル
// @Description  予定時刻前の通知をキャンセルします。二重キャンセルはエラーになります。
// @Tags         pending
// @Security     ApiKeyAuth
// @Produce      json
// @Param        siteKey path  string true "サイトキー"
// @Param        id      path  int    true "保留通知ID"
// @Param        user_id query int    true "ユーザーID"
// @Success      204 {string} string "キャンセル完了"
// @Failure      400 {string} string "Already cancelled"
// @Failure      401 {string} string "Missing or invalid API key"
// @Failure      404 {string} string "Pending notification not found"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /api/sites/{siteKey}/pending/{id} [delete]
func (h PendingCancelHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithRequestID(ctx, h.Logger)

	if _, ok := siteForRequest(w, r); !ok {
		return
	}

	pendingID, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.SafeErrorV2(w, http.StatusBadRequest,
			respond.NewAppError(http.StatusBadRequest, "invalid pending notification id", err))
		return
	}

	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		respond.SafeErrorV2(w, http.StatusBadRequest,
			respond.NewAppError(http.StatusBadRequest, "user_id query parameter is required", err))
		return
	}

	if err := h.Svc.Cancel(ctx, userID, pendingID); err != nil {
		switch {
		case errors.Is(err, queue.ErrPendingNotFound):
			respond.SafeErrorV2(w, http.StatusNotFound,
				respond.NewAppError(http.StatusNotFound, "pending notification not found", err))
		case errors.Is(err, queue.ErrAlreadyCancelled):
			respond.SafeErrorV2(w, http.StatusBadRequest,
				respond.NewAppError(http.StatusBadRequest, "pending notification already cancelled", err))
		default:
			logger.Error("failed to cancel pending notification",
				slog.Int64("user_id", userID),
				slog.Int64("pending_id", pendingID),
				slog.Any("error", err))
			respond.SafeErrorV2(w, http.StatusInternalServerError,
				respond.NewAppError(http.StatusInternalServerError, "internal server error", err))
		}
		return
	}

	logger.Info("pending notification cancelled",
		slog.Int64("user_id", userID),
		slog.Int64("pending_id", pendingID))
	w.WriteHeader(http.StatusNoContent)
}
