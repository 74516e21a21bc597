package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Black-And-White-Club/kart-bot/pkg/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errValidation = errors.New("validation failed")
	errNotFound   = errors.New("not found")
	errConflict   = errors.New("conflict")

	classes = ErrorClasses{Validation: errValidation, NotFound: errNotFound, Conflict: errConflict}
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: rounds must be positive", errValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: match", errNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: round already scored", errConflict), http.StatusConflict},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err, classes), tt.err.Error())
	}
}

func TestWriteFailure_HidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteFailure(rec, errors.New("pq: password authentication failed"), classes)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid", body: `{"name":"Rainbow Road"}`},
		{name: "empty", body: ``, wantErr: "must not be empty"},
		{name: "unknown field", body: `{"nme":"x"}`, wantErr: "unknown key"},
		{name: "wrong type", body: `{"name":3}`, wantErr: "incorrect JSON type"},
		{name: "two values", body: `{"name":"a"}{"name":"b"}`, wantErr: "single JSON value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst payload
			err := ReadJSON(httptest.NewRecorder(), req, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "Rainbow Road", dst.Name)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewIPRateLimiter(0, 2)
	handler := RateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.7:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	other := httptest.NewRequest(http.MethodPost, "/", nil)
	other.RemoteAddr = "10.0.0.8:5555"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	var body ErrorResponse
	last := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "10.0.0.7:5555"
	handler.ServeHTTP(last, req)
	require.NoError(t, json.NewDecoder(last.Body).Decode(&body))
	assert.Equal(t, "Too Many Requests", body.Error)
}

func TestIPRateLimiter_PrunesIdleEntries(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1)
	clock := time.Date(2026, 3, 6, 20, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }

	for i := range cleanupThreshold + 1 {
		limiter.GetLimiter(fmt.Sprintf("10.1.%d.%d", i/256, i%256))
	}
	require.Equal(t, cleanupThreshold+1, limiter.size())

	clock = clock.Add(maxIdleAge + time.Minute)
	limiter.GetLimiter("10.9.9.9")
	assert.Equal(t, 1, limiter.size())
}

func TestWriteResult(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	req := httptest.NewRequest(http.MethodGet, "/api/things", nil)

	tests := []struct {
		name       string
		result     results.OperationResult[int, error]
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "success",
			result:     results.SuccessResult[int, error](7),
			wantStatus: http.StatusCreated,
			wantBody:   "7\n",
		},
		{
			name:       "classified failure",
			result:     results.FailureResult[int, error](fmt.Errorf("%w: match", errNotFound)),
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"not found: match"}` + "\n",
		},
		{
			name:       "infrastructure error",
			err:        errors.New("dial tcp: refused"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal Server Error"}` + "\n",
		},
		{
			name:       "empty result",
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal Server Error"}` + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteResult(rec, req, logger, tt.result, tt.err, http.StatusCreated, classes)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}
}
