package web

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ecuevas97/PartyPal/internal/api/rest"
	"github.com/ecuevas97/PartyPal/internal/client"
	"github.com/ecuevas97/PartyPal/internal/logger"
	"github.com/ecuevas97/PartyPal/internal/model"
	"github.com/ecuevas97/PartyPal/internal/repository/memory"
	"github.com/ecuevas97/PartyPal/internal/service/events"
	"github.com/ecuevas97/PartyPal/internal/ui"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	api       *client.Client
	web       *httptest.Server
	browser   *http.Client
	listCalls *atomic.Int32
}

// newEnv поднимает REST backend, веб-интерфейс и браузер с cookie
func newEnv(t *testing.T, reconcile ui.Reconcile, seed ...model.Event) *testEnv {
	t.Helper()

	service := events.NewEventService(memory.NewRepositoryWith(seed), nil)
	mux := http.NewServeMux()
	rest.NewHandler(service, nil, logger.Discard()).Register(mux)

	listCalls := &atomic.Int32{}
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/events" {
			listCalls.Add(1)
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(backend.Close)

	api := client.NewClient(backend.URL)
	srv, err := NewServer(api, reconcile, time.Hour, logger.Discard())
	require.NoError(t, err)

	web := httptest.NewServer(srv.Handler())
	t.Cleanup(web.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testEnv{
		api:       api,
		web:       web,
		browser:   &http.Client{Jar: jar},
		listCalls: listCalls,
	}
}

func (e *testEnv) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := e.browser.Get(e.web.URL + path)
	require.NoError(t, err)
	return readBody(t, resp)
}

func (e *testEnv) post(t *testing.T, path string, form url.Values) (int, string) {
	t.Helper()
	resp, err := e.browser.PostForm(e.web.URL+path, form)
	require.NoError(t, err)
	return readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) (int, string) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServer_EmptyList(t *testing.T) {
	env := newEnv(t, ui.ReconcileRefetch)

	status, body := env.get(t, "/")

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, ui.EmptyListText)
}

func TestServer_AddEvent(t *testing.T) {
	env := newEnv(t, ui.ReconcileRefetch)

	status, body := env.get(t, "/add")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Add Event")

	status, body = env.post(t, "/add", url.Values{
		"title":       {"Launch"},
		"date":        {"2025-01-01"},
		"location":    {"Pad 39A"},
		"isAttending": {"true"},
	})

	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Launch")
	assert.Contains(t, body, "2025-01-01 • Pad 39A")

	list, err := env.api.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsAttending)
}

func TestServer_AddEmptyTitleRefusedBeforeNetwork(t *testing.T) {
	env := newEnv(t, ui.ReconcileRefetch)

	status, body := env.post(t, "/add", url.Values{"date": {"2025-01-01"}})

	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, body, ui.MsgRequired)
	assert.Contains(t, body, `value="2025-01-01"`)

	list, err := env.api.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestServer_EditEvent(t *testing.T) {
	env := newEnv(t, ui.ReconcileLocal, model.Event{ID: "1", Title: "Launch", Date: "2025-01-01"})

	// прямой переход на страницу редактирования без списка
	status, body := env.get(t, "/edit/1")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Edit Event")
	assert.Contains(t, body, `value="Launch"`)

	status, body = env.post(t, "/edit/1", url.Values{"title": {"Relaunch"}, "date": {"2025-02-02"}})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Relaunch")
	assert.NotContains(t, body, ">Launch<")

	got, err := env.api.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, model.Event{ID: "1", Title: "Relaunch", Date: "2025-02-02"}, got)
}

func TestServer_EditMissing(t *testing.T) {
	env := newEnv(t, ui.ReconcileRefetch)

	status, body := env.get(t, "/edit/missing")

	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, ui.MsgNotFound)
}

func TestServer_DeleteWithoutRefetch(t *testing.T) {
	env := newEnv(t, ui.ReconcileRefetch,
		model.Event{ID: "1", Title: "Launch", Date: "2025-01-01"},
		model.Event{ID: "2", Title: "Dinner", Date: "2025-01-02"},
	)

	_, body := env.get(t, "/")
	require.Contains(t, body, "Launch")
	require.Equal(t, int32(1), env.listCalls.Load())

	status, body := env.post(t, "/events/1/delete", nil)

	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, body, "Launch")
	assert.Contains(t, body, "Dinner")
	assert.Equal(t, int32(1), env.listCalls.Load())

	// повторное удаление: ошибка, список без изменений
	_, body = env.post(t, "/events/1/delete", nil)
	assert.Contains(t, body, ui.MsgDeleteFailed)
	assert.Contains(t, body, "Dinner")
}

func TestServer_Cancel(t *testing.T) {
	env := newEnv(t, ui.ReconcileRefetch)
	env.get(t, "/add")

	status, body := env.post(t, "/cancel", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, ui.EmptyListText)
}

func TestServer_BackendDown(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	backendURL := backend.URL
	backend.Close()

	srv, err := NewServer(client.NewClient(backendURL), ui.ReconcileRefetch, time.Hour, logger.Discard())
	require.NoError(t, err)
	web := httptest.NewServer(srv.Handler())
	t.Cleanup(web.Close)

	resp, err := http.Get(web.URL + "/")
	require.NoError(t, err)
	status, body := readBody(t, resp)

	assert.Equal(t, http.StatusBadGateway, status)
	assert.Contains(t, body, ui.MsgLoadFailed)
}

func TestServer_Health(t *testing.T) {
	env := newEnv(t, ui.ReconcileRefetch)

	status, body := env.get(t, "/health")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", strings.TrimSpace(body))
}

func TestServer_DeleteInFreshSession(t *testing.T) {
	env := newEnv(t, ui.ReconcileRefetch,
		model.Event{ID: "1", Title: "Launch", Date: "2025-01-01"},
		model.Event{ID: "2", Title: "Dinner", Date: "2025-01-02"},
	)

	// сессия без предварительного GET / (например, истекла по TTL)
	status, body := env.post(t, "/events/1/delete", nil)

	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, body, "Loading events...")
	assert.NotContains(t, body, "Launch")
	assert.Contains(t, body, "Dinner")

	list, err := env.api.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2", list[0].ID)
}
