package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		name         string
		code         int
		data         any
		expectedBody string
	}{
		{
			name:         "notify outcome",
			code:         http.StatusOK,
			data:         map[string]string{"status": "sent"},
			expectedBody: `{"status":"sent"}`,
		},
		{
			name:         "created subscription",
			code:         http.StatusCreated,
			data:         struct{ ID int64 }{ID: 7},
			expectedBody: `{"ID":7}`,
		},
		{
			name:         "no content",
			code:         http.StatusNoContent,
			data:         nil,
			expectedBody: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			JSON(w, tt.code, tt.data)

			if w.Code != tt.code {
				t.Errorf("Code = %v, want %v", w.Code, tt.code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %v, want application/json", ct)
			}
			if body := strings.TrimSpace(w.Body.String()); body != tt.expectedBody {
				t.Errorf("Body = %v, want %v", body, tt.expectedBody)
			}
		})
	}
}

func TestJSON_EncodingError(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, make(chan int))

	// ヘッダーとステータスは送信済み
	if w.Code != http.StatusOK {
		t.Errorf("Code = %v, want %v", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %v, want application/json", ct)
	}
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, http.StatusNotFound, errors.New("user not found"))

	if w.Code != http.StatusNotFound {
		t.Errorf("Code = %v, want %v", w.Code, http.StatusNotFound)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["error"] != "user not found" {
		t.Errorf("Error message = %v, want %v", body["error"], "user not found")
	}
}

func TestSafeError(t *testing.T) {
	tests := []struct {
		name        string
		code        int
		err         error
		expectedMsg string
	}{
		{
			name:        "validation error passes through",
			code:        http.StatusBadRequest,
			err:         errors.New("user_id is required"),
			expectedMsg: "user_id is required",
		},
		{
			name:        "mutually exclusive fields pass through",
			code:        http.StatusBadRequest,
			err:         errors.New("user_id and user_ids are mutually exclusive"),
			expectedMsg: "user_id and user_ids are mutually exclusive",
		},
		{
			name:        "not found passes through",
			code:        http.StatusNotFound,
			err:         errors.New("pending notification not found"),
			expectedMsg: "pending notification not found",
		},
		{
			name:        "schedule constraint passes through",
			code:        http.StatusBadRequest,
			err:         errors.New("weekly_day must be between 0 and 6"),
			expectedMsg: "weekly_day must be between 0 and 6",
		},
		{
			name:        "connection detail is hidden",
			code:        http.StatusInternalServerError,
			err:         errors.New("dial tcp: postgres://nolo:hunter2@db:5432 refused"),
			expectedMsg: "internal server error",
		},
		{
			name:        "5xx hides even safe-looking wording",
			code:        http.StatusInternalServerError,
			err:         errors.New("queue table not found"),
			expectedMsg: "internal server error",
		},
		{
			name:        "bad gateway is internal",
			code:        http.StatusBadGateway,
			err:         errors.New("push service unavailable"),
			expectedMsg: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			SafeError(w, tt.code, tt.err)

			if w.Code != tt.code {
				t.Errorf("Code = %v, want %v", w.Code, tt.code)
			}
			var body map[string]string
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if body["error"] != tt.expectedMsg {
				t.Errorf("Error message = %v, want %v", body["error"], tt.expectedMsg)
			}
		})
	}
}

func TestSafeError_NilWritesNothing(t *testing.T) {
	w := httptest.NewRecorder()
	SafeError(w, http.StatusBadRequest, nil)
	if w.Body.Len() != 0 {
		t.Errorf("Expected no body for nil error, got: %v", w.Body.String())
	}
}

func TestAppError(t *testing.T) {
	t.Run("Error prefers internal cause", func(t *testing.T) {
		err := NewAppError(400, "invalid request body", errors.New("json: unknown field"))
		if err.Error() != "json: unknown field" {
			t.Errorf("Error() = %v", err.Error())
		}
	})

	t.Run("Error falls back to user message", func(t *testing.T) {
		err := NewAppError(404, "site not found", nil)
		if err.Error() != "site not found" {
			t.Errorf("Error() = %v", err.Error())
		}
	})

	t.Run("Unwrap", func(t *testing.T) {
		inner := errors.New("row scan failed")
		err := NewAppError(500, "server error", inner)
		if errors.Unwrap(err) != inner {
			t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), inner)
		}
	})
}

func TestSafeErrorV2(t *testing.T) {
	tests := []struct {
		name         string
		code         int
		err          error
		expectedCode int
		expectedMsg  string
	}{
		{
			name:         "AppError returns user message",
			code:         http.StatusInternalServerError,
			err:          NewAppError(http.StatusInternalServerError, "サーバーエラー", errors.New("pending insert: deadlock detected")),
			expectedCode: http.StatusInternalServerError,
			expectedMsg:  "サーバーエラー",
		},
		{
			name:         "AppError without cause",
			code:         http.StatusUnauthorized,
			err:          NewAppError(http.StatusUnauthorized, "Missing or invalid API key", nil),
			expectedCode: http.StatusUnauthorized,
			expectedMsg:  "Missing or invalid API key",
		},
		{
			name: "wrapped AppError is found in the chain",
			code: http.StatusForbidden,
			err: fmt.Errorf("notify: %w",
				NewAppError(http.StatusForbidden, "site key mismatch", errors.New("path key acme, auth key other"))),
			expectedCode: http.StatusForbidden,
			expectedMsg:  "site key mismatch",
		},
		{
			name:         "plain validation error falls back",
			code:         http.StatusBadRequest,
			err:          errors.New("title is required"),
			expectedCode: http.StatusBadRequest,
			expectedMsg:  "title is required",
		},
		{
			name:         "plain internal error falls back and is hidden",
			code:         http.StatusInternalServerError,
			err:          errors.New("history insert failed"),
			expectedCode: http.StatusInternalServerError,
			expectedMsg:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			SafeErrorV2(w, tt.code, tt.err)

			if w.Code != tt.expectedCode {
				t.Errorf("Code = %v, want %v", w.Code, tt.expectedCode)
			}
			var body map[string]string
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if body["error"] != tt.expectedMsg {
				t.Errorf("Error message = %v, want %v", body["error"], tt.expectedMsg)
			}
		})
	}
}
