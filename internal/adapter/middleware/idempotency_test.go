package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"lendingops-backend/pkg/logger"
)

var (
	testActor = strings.Repeat("b", 32)
	testReqID = strings.Repeat("a", 32)
)

func setupEcho(rdb redis.Cmdable, ttl time.Duration, handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(Idempotency(rdb, ttl, logger.Nop()))
	e.POST("/inquiries/:inquiry_id/transition", handler)
	e.GET("/inquiries/:inquiry_id", handler)
	return e
}

func validHeaders() map[string]string {
	return map[string]string{
		HeaderRequestID: testReqID,
		HeaderRequestAt: time.Now().UTC().Format(time.RFC3339),
		HeaderActorID:   testActor,
	}
}

func without(h map[string]string, key string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if k != key {
			out[k] = v
		}
	}
	return out
}

func with(h map[string]string, key, val string) map[string]string {
	out := without(h, key)
	out[key] = val
	return out
}

func doReq(t *testing.T, e *echo.Echo, method, path string, body io.Reader, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func countingHandler(calls *int32, code int) echo.HandlerFunc {
	return func(c echo.Context) error {
		n := atomic.AddInt32(calls, 1)
		return c.JSON(code, map[string]any{"outcome": "wrote", "call": n})
	}
}

const transitionPath = "/inquiries/inq1/transition"

func TestIdempotency_BypassOnGET(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var calls int32
	e := setupEcho(rdb, time.Minute, countingHandler(&calls, http.StatusOK))

	rec := doReq(t, e, http.MethodGet, "/inquiries/inq1", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestIdempotency_HeaderValidation(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var calls int32
	e := setupEcho(rdb, time.Minute, countingHandler(&calls, http.StatusOK))
	base := validHeaders()

	tests := []struct {
		name string
		hdr  map[string]string
	}{
		{"missing request id", without(base, HeaderRequestID)},
		{"invalid request id", with(base, HeaderRequestID, "NOT-VALID")},
		{"invalid request at", with(base, HeaderRequestAt, "not-a-time")},
		{"request at too old", with(base, HeaderRequestAt, time.Now().UTC().Add(-maxClockSkew-time.Minute).Format(time.RFC3339))},
		{"request at in future", with(base, HeaderRequestAt, time.Now().UTC().Add(maxClockSkew+time.Minute).Format(time.RFC3339))},
		{"missing actor", without(base, HeaderActorID)},
		{"invalid actor", with(base, HeaderActorID, "not32hex")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doReq(t, e, http.MethodPost, transitionPath, strings.NewReader(`{"target":"SURVEY"}`), tt.hdr)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("want 400, got %d body=%s", rec.Code, rec.Body.String())
			}
		})
	}
	if calls != 0 {
		t.Fatalf("handler must not run on rejected headers, ran %d times", calls)
	}
}

func TestIdempotency_ReplaysFinishedResponse(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var calls int32
	e := setupEcho(rdb, 2*time.Minute, countingHandler(&calls, http.StatusOK))
	h := validHeaders()
	body := `{"target":"SURVEY"}`

	rec1 := doReq(t, e, http.MethodPost, transitionPath, strings.NewReader(body), h)
	if rec1.Code != http.StatusOK {
		t.Fatalf("first: want 200, got %d body=%s", rec1.Code, rec1.Body.String())
	}
	rec2 := doReq(t, e, http.MethodPost, transitionPath, strings.NewReader(body), h)
	if rec2.Code != http.StatusOK {
		t.Fatalf("replay: want 200, got %d", rec2.Code)
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Fatalf("replay body mismatch: %q vs %q", rec1.Body.String(), rec2.Body.String())
	}
	if rec2.Header().Get(HeaderReplay) != "true" {
		t.Fatalf("replay header missing")
	}
	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
}

func TestIdempotency_DifferentPathIsDifferentKey(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var calls int32
	e := setupEcho(rdb, 2*time.Minute, countingHandler(&calls, http.StatusOK))
	h := validHeaders()

	doReq(t, e, http.MethodPost, "/inquiries/inq1/transition", strings.NewReader(`{}`), h)
	rec := doReq(t, e, http.MethodPost, "/inquiries/inq2/transition", strings.NewReader(`{}`), h)
	if rec.Code != http.StatusOK || calls != 2 {
		t.Fatalf("second inquiry must reach handler: code=%d calls=%d", rec.Code, calls)
	}
}

func TestIdempotency_ServerErrorReleasesKey(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var calls int32
	e := setupEcho(rdb, 2*time.Minute, countingHandler(&calls, http.StatusInternalServerError))
	h := validHeaders()

	rec := doReq(t, e, http.MethodPost, transitionPath, strings.NewReader(`{}`), h)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", rec.Code)
	}
	key := buildKey(http.MethodPost, transitionPath, testActor, testReqID)
	if n := rdb.Exists(context.Background(), key).Val(); n != 0 {
		t.Fatalf("key should be released after 5xx")
	}

	doReq(t, e, http.MethodPost, transitionPath, strings.NewReader(`{}`), h)
	if calls != 2 {
		t.Fatalf("retry must reach handler, calls=%d", calls)
	}
}

func TestIdempotency_ConflictWhenInProgress(t *testing.T) {
	_, rdb := newMiniRedis(t)
	store := entryStore{rdb: rdb}
	var calls int32
	e := setupEcho(rdb, 2*time.Minute, countingHandler(&calls, http.StatusOK))
	body := []byte(`{"target":"SURVEY"}`)

	key := buildKey(http.MethodPost, transitionPath, testActor, testReqID)
	entry := idempEntry{InProgress: true, BodySHA256: bodyHash(body), RequestID: testReqID, CreatedAt: nowUTC()}
	if ok, err := store.reserve(context.Background(), key, entry); err != nil || !ok {
		t.Fatalf("seed provisional: ok=%v err=%v", ok, err)
	}

	rec := doReq(t, e, http.MethodPost, transitionPath, bytes.NewReader(body), validHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("want 409, got %d body=%s", rec.Code, rec.Body.String())
	}
	if calls != 0 {
		t.Fatalf("handler must not run while in progress")
	}
}

func TestIdempotency_ConflictOnDifferentBody(t *testing.T) {
	_, rdb := newMiniRedis(t)
	store := entryStore{rdb: rdb}
	var calls int32
	e := setupEcho(rdb, 2*time.Minute, countingHandler(&calls, http.StatusOK))

	key := buildKey(http.MethodPost, transitionPath, testActor, testReqID)
	final := idempEntry{
		Code:       http.StatusOK,
		Body:       []byte(`{"outcome":"wrote"}`),
		BodySHA256: bodyHash([]byte(`{"target":"SURVEY"}`)),
		RequestID:  testReqID,
		CreatedAt:  nowUTC(),
	}
	if err := store.complete(context.Background(), key, final, 5*time.Minute); err != nil {
		t.Fatalf("seed final: %v", err)
	}

	rec := doReq(t, e, http.MethodPost, transitionPath, strings.NewReader(`{"target":"REJECTED"}`), validHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("want 409, got %d", rec.Code)
	}
}

func TestIdempotency_StoreUnavailable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	var calls int32
	e := setupEcho(rdb, time.Minute, countingHandler(&calls, http.StatusOK))

	rec := doReq(t, e, http.MethodPost, transitionPath, strings.NewReader(`{}`), validHeaders())
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("want 503, got %d", rec.Code)
	}
}
