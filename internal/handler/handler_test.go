package handler

import (
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/ndc-feature-tracker/internal/queue"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []queue.CatalogChangedEvent
}

func (n *recordingNotifier) Changed(ev queue.CatalogChangedEvent) <-chan struct{} {
	n.mu.Lock()
	n.events = append(n.events, ev)
	n.mu.Unlock()
	done := make(chan struct{})
	close(done)
	return done
}

func (n *recordingNotifier) all() []queue.CatalogChangedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]queue.CatalogChangedEvent(nil), n.events...)
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var ts = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// call routes a request through a fresh Echo instance so path parameters
// are populated the way the router does it.
func call(t *testing.T, method, route, target, body string, h echo.HandlerFunc) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	e := echo.New()
	e.Add(method, route, h)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func dataMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var raw struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	return raw.Data
}

var airlineCols = []string{"id", "name", "codes", "provider", "status", "created_at", "updated_at"}

var featureCols = []string{"id", "category", "name", "description", "created_at", "updated_at"}

var implementationCols = []string{"id", "airline_id", "feature_id", "value", "notes", "created_at", "updated_at"}

func callWithHeader(t *testing.T, e *echo.Echo, method, target, body, authorization string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, authorization)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}
