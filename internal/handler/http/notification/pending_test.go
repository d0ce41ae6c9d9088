package notification

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nolofication/internal/common/pagination"
	"nolofication/internal/domain/entity"
	"nolofication/internal/usecase/queue"
)

func pendingEntry(id int64, siteID int64, due time.Time) *entity.PendingNotification {
	return &entity.PendingNotification{
		ID:           id,
		UserID:       7,
		SiteID:       siteID,
		Title:        "Digest",
		Type:         entity.TypeInfo,
		ScheduledFor: due,
		CreatedAt:    due.Add(-time.Hour),
	}
}

/* ──── 一覧 ──── */

func TestPendingListHandler(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := &stubQueueSvc{entries: []*entity.PendingNotification{
		pendingEntry(1, testSite.ID, base),
		pendingEntry(2, testSite.ID, base.Add(time.Hour)),
		pendingEntry(3, 99, base.Add(2*time.Hour)), // another site's entry
	}}
	h := PendingListHandler{Svc: svc, PaginationCfg: pagination.DefaultConfig(), Logger: slog.Default()}

	req := siteRequest(http.MethodGet, "/api/sites/myapp/pending?user_id=7", "", "myapp")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp pagination.Response[PendingDTO]
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("got %d entries, want 2 (other site's entry excluded)", len(resp.Data))
	}
	if resp.Data[0].ID != 1 || resp.Data[1].ID != 2 {
		t.Errorf("entry IDs = %d, %d; want 1, 2", resp.Data[0].ID, resp.Data[1].ID)
	}
	if resp.Pagination.Total != 2 || resp.Pagination.TotalPages != 1 {
		t.Errorf("pagination metadata = %+v", resp.Pagination)
	}
}

func TestPendingListHandler_Paginated(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	entries := make([]*entity.PendingNotification, 0, 5)
	for i := int64(1); i <= 5; i++ {
		entries = append(entries, pendingEntry(i, testSite.ID, base.Add(time.Duration(i)*time.Minute)))
	}
	svc := &stubQueueSvc{entries: entries}
	h := PendingListHandler{Svc: svc, PaginationCfg: pagination.DefaultConfig(), Logger: slog.Default()}

	req := siteRequest(http.MethodGet, "/api/sites/myapp/pending?user_id=7&page=2&limit=2", "", "myapp")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
	}

	var resp pagination.Response[PendingDTO]
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("got %d entries, want 2", len(resp.Data))
	}
	if resp.Data[0].ID != 3 || resp.Data[1].ID != 4 {
		t.Errorf("page 2 IDs = %d, %d; want 3, 4", resp.Data[0].ID, resp.Data[1].ID)
	}
	if resp.Pagination.Total != 5 || resp.Pagination.TotalPages != 3 {
		t.Errorf("pagination metadata = %+v", resp.Pagination)
	}
}

func TestPendingListHandler_Errors(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		svc            *stubQueueSvc
		expectedStatus int
	}{
		{
			name:           "missing user_id",
			target:         "/api/sites/myapp/pending",
			svc:            &stubQueueSvc{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "non-numeric user_id",
			target:         "/api/sites/myapp/pending?user_id=abc",
			svc:            &stubQueueSvc{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid page",
			target:         "/api/sites/myapp/pending?user_id=7&page=0",
			svc:            &stubQueueSvc{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "list failure",
			target:         "/api/sites/myapp/pending?user_id=7",
			svc:            &stubQueueSvc{listErr: errors.New("connection refused")},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := PendingListHandler{Svc: tt.svc, PaginationCfg: pagination.DefaultConfig(), Logger: slog.Default()}

			req := siteRequest(http.MethodGet, tt.target, "", "myapp")
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("got status %d, want %d: %s", rr.Code, tt.expectedStatus, rr.Body.String())
			}
		})
	}
}

/* ──── キャンセル ──── */

func TestPendingCancelHandler(t *testing.T) {
	svc := &stubQueueSvc{}
	h := PendingCancelHandler{Svc: svc, Logger: slog.Default()}

	req := siteRequest(http.MethodDelete, "/api/sites/myapp/pending/42?user_id=7", "", "myapp")
	req.SetPathValue("id", "42")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("got status %d, want %d: %s", rr.Code, http.StatusNoContent, rr.Body.String())
	}
	if svc.cancelledUserID != 7 || svc.cancelledPending != 42 {
		t.Errorf("cancelled (%d, %d), want (7, 42)", svc.cancelledUserID, svc.cancelledPending)
	}
}

func TestPendingCancelHandler_Errors(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		pendingID      string
		cancelErr      error
		expectedStatus int
	}{
		{
			name:           "invalid pending id",
			target:         "/api/sites/myapp/pending/abc?user_id=7",
			pendingID:      "abc",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing user_id",
			target:         "/api/sites/myapp/pending/42",
			pendingID:      "42",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "not found",
			target:         "/api/sites/myapp/pending/42?user_id=7",
			pendingID:      "42",
			cancelErr:      queue.ErrPendingNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "already cancelled",
			target:         "/api/sites/myapp/pending/42?user_id=7",
			pendingID:      "42",
			cancelErr:      queue.ErrAlreadyCancelled,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "storage failure",
			target:         "/api/sites/myapp/pending/42?user_id=7",
			pendingID:      "42",
			cancelErr:      errors.New("connection refused"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubQueueSvc{cancelErr: tt.cancelErr}
			h := PendingCancelHandler{Svc: svc, Logger: slog.Default()}

			req := siteRequest(http.MethodDelete, tt.target, "", "myapp")
			req.SetPathValue("id", tt.pendingID)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("got status %d, want %d: %s", rr.Code, tt.expectedStatus, rr.Body.String())
			}
		})
	}
}
