package ui

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ecuevas97/PartyPal/internal/logger"
	"github.com/ecuevas97/PartyPal/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend unavailable")

// mockAPI - мок EventsAPI с подсчетом вызовов
type mockAPI struct {
	mu    sync.Mutex
	calls map[string]int

	listFunc   func(ctx context.Context) ([]model.Event, error)
	getFunc    func(ctx context.Context, id string) (model.Event, error)
	createFunc func(ctx context.Context, draft model.Event) (model.Event, error)
	updateFunc func(ctx context.Context, id string, event model.Event) (model.Event, error)
	deleteFunc func(ctx context.Context, id string) error
}

func (m *mockAPI) count(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[op]++
}

func (m *mockAPI) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *mockAPI) List(ctx context.Context) ([]model.Event, error) {
	m.count("list")
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockAPI) Get(ctx context.Context, id string) (model.Event, error) {
	m.count("get")
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return model.Event{}, nil
}

func (m *mockAPI) Create(ctx context.Context, draft model.Event) (model.Event, error) {
	m.count("create")
	if m.createFunc != nil {
		return m.createFunc(ctx, draft)
	}
	return draft, nil
}

func (m *mockAPI) Update(ctx context.Context, id string, event model.Event) (model.Event, error) {
	m.count("update")
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, event)
	}
	return event, nil
}

func (m *mockAPI) Delete(ctx context.Context, id string) error {
	m.count("delete")
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func listOf(events ...model.Event) func(context.Context) ([]model.Event, error) {
	return func(context.Context) ([]model.Event, error) {
		return events, nil
	}
}

func newLoadedPage(t *testing.T, api *mockAPI, reconcile Reconcile) *Page {
	t.Helper()
	p := NewPage(api, reconcile, logger.Discard())
	require.NoError(t, p.Load(context.Background()))
	return p
}

func TestPage_LoadSuccess(t *testing.T) {
	events := []model.Event{{ID: "1", Title: "A", Date: "2025-01-01"}, {ID: "2", Title: "B", Date: "2025-01-02"}}
	api := &mockAPI{listFunc: listOf(events...)}
	p := NewPage(api, ReconcileRefetch, logger.Discard())

	assert.Equal(t, PhaseLoading, p.State().Phase)
	require.NoError(t, p.Load(context.Background()))

	s := p.State()
	assert.Equal(t, PhaseReady, s.Phase)
	assert.Equal(t, events, s.Events)
	assert.Empty(t, s.Message)
}

func TestPage_LoadFailure(t *testing.T) {
	api := &mockAPI{listFunc: func(context.Context) ([]model.Event, error) { return nil, errBackend }}
	p := NewPage(api, ReconcileRefetch, logger.Discard())

	err := p.Load(context.Background())

	assert.ErrorIs(t, err, errBackend)
	s := p.State()
	assert.Equal(t, PhaseError, s.Phase)
	assert.Equal(t, MsgLoadFailed, s.Message)
	assert.Empty(t, s.Events)
}

// Сценарий "Launch": удаление убирает запись локально без повторной загрузки
func TestPage_DeleteLaunchWithoutRefetch(t *testing.T) {
	launch := model.Event{ID: "1", Title: "Launch", Date: "2025-01-01"}
	api := &mockAPI{listFunc: listOf(launch)}
	p := newLoadedPage(t, api, ReconcileRefetch)
	require.Equal(t, 1, api.Calls("list"))

	require.NoError(t, p.Delete(context.Background(), "1"))

	assert.Empty(t, p.State().Events)
	assert.Equal(t, 1, api.Calls("list"))
	assert.Equal(t, 1, api.Calls("delete"))
}

func TestPage_DeletePreservesOrder(t *testing.T) {
	a := model.Event{ID: "a", Title: "A", Date: "2025-01-01"}
	b := model.Event{ID: "b", Title: "B", Date: "2025-01-02"}
	c := model.Event{ID: "c", Title: "C", Date: "2025-01-03"}
	p := newLoadedPage(t, &mockAPI{listFunc: listOf(a, b, c)}, ReconcileRefetch)

	require.NoError(t, p.Delete(context.Background(), "b"))

	assert.Equal(t, []model.Event{a, c}, p.State().Events)
}

func TestPage_DeleteTwice(t *testing.T) {
	a := model.Event{ID: "a", Title: "A", Date: "2025-01-01"}
	b := model.Event{ID: "b", Title: "B", Date: "2025-01-02"}
	deleted := map[string]bool{}
	api := &mockAPI{
		listFunc: listOf(a, b),
		deleteFunc: func(_ context.Context, id string) error {
			if deleted[id] {
				return errBackend
			}
			deleted[id] = true
			return nil
		},
	}
	p := newLoadedPage(t, api, ReconcileRefetch)

	require.NoError(t, p.Delete(context.Background(), "a"))
	err := p.Delete(context.Background(), "a")

	assert.ErrorIs(t, err, errBackend)
	s := p.State()
	assert.Equal(t, []model.Event{b}, s.Events)
	assert.Equal(t, MsgDeleteFailed, s.Message)
	assert.Equal(t, PhaseReady, s.Phase)
}

func TestPage_SubmitEmptyTitleMakesNoNetworkCall(t *testing.T) {
	api := &mockAPI{listFunc: listOf()}
	p := newLoadedPage(t, api, ReconcileRefetch)
	p.OpenAdd()
	require.NoError(t, p.SetField(FieldDate, "2025-01-01"))

	err := p.SubmitForm(context.Background())

	assert.ErrorIs(t, err, ErrRequired)
	assert.Equal(t, 0, api.Calls("create"))
	assert.Equal(t, 1, api.Calls("list"))
	s := p.State()
	assert.Equal(t, PhaseFormOpen, s.Phase)
	require.NotNil(t, s.Form)
	assert.Equal(t, MsgRequired, s.Form.Message)
}

func TestPage_CreateRefetch(t *testing.T) {
	existing := model.Event{ID: "1", Title: "A", Date: "2025-01-01"}
	created := model.Event{ID: "2", Title: "Launch", Date: "2025-02-02", IsAttending: true}
	lists := [][]model.Event{{existing}, {existing, created}}
	api := &mockAPI{
		listFunc: func(context.Context) ([]model.Event, error) {
			next := lists[0]
			if len(lists) > 1 {
				lists = lists[1:]
			}
			return next, nil
		},
		createFunc: func(_ context.Context, draft model.Event) (model.Event, error) {
			assert.True(t, draft.IsDraft())
			draft.ID = "2"
			return draft, nil
		},
	}
	p := newLoadedPage(t, api, ReconcileRefetch)

	p.OpenAdd()
	require.NoError(t, p.SetField(FieldTitle, "Launch"))
	require.NoError(t, p.SetField(FieldDate, "2025-02-02"))
	require.NoError(t, p.SetAttending(true))
	require.NoError(t, p.SubmitForm(context.Background()))

	s := p.State()
	assert.Equal(t, PhaseReady, s.Phase)
	assert.Nil(t, s.Form)
	assert.Equal(t, []model.Event{existing, created}, s.Events)
	assert.Equal(t, 2, api.Calls("list"))
}

func TestPage_CreateLocal(t *testing.T) {
	existing := model.Event{ID: "1", Title: "A", Date: "2025-01-01"}
	api := &mockAPI{
		listFunc: listOf(existing),
		createFunc: func(_ context.Context, draft model.Event) (model.Event, error) {
			draft.ID = "2"
			return draft, nil
		},
	}
	p := newLoadedPage(t, api, ReconcileLocal)

	p.OpenAdd()
	require.NoError(t, p.SetField(FieldTitle, "B"))
	require.NoError(t, p.SetField(FieldDate, "2025-01-02"))
	require.NoError(t, p.SubmitForm(context.Background()))

	assert.Equal(t, []model.Event{existing, {ID: "2", Title: "B", Date: "2025-01-02"}}, p.State().Events)
	assert.Equal(t, 1, api.Calls("list"))
}

func TestPage_UpdateLocalReplacesInPlace(t *testing.T) {
	a := model.Event{ID: "a", Title: "A", Date: "2025-01-01"}
	b := model.Event{ID: "b", Title: "B", Date: "2025-01-02"}
	var gotID string
	api := &mockAPI{
		listFunc: listOf(a, b),
		updateFunc: func(_ context.Context, id string, event model.Event) (model.Event, error) {
			gotID = id
			event.ID = id
			return event, nil
		},
	}
	p := newLoadedPage(t, api, ReconcileLocal)

	require.NoError(t, p.OpenEdit(context.Background(), "a"))
	require.NoError(t, p.SetField(FieldTitle, "A2"))
	require.NoError(t, p.SubmitForm(context.Background()))

	assert.Equal(t, "a", gotID)
	assert.Equal(t, []model.Event{{ID: "a", Title: "A2", Date: "2025-01-01"}, b}, p.State().Events)
	assert.Equal(t, 0, api.Calls("get"))
}

func TestPage_FailedUpdateKeepsListAndForm(t *testing.T) {
	a := model.Event{ID: "a", Title: "A", Date: "2025-01-01"}
	api := &mockAPI{
		listFunc: listOf(a),
		updateFunc: func(context.Context, string, model.Event) (model.Event, error) {
			return model.Event{}, errBackend
		},
	}
	p := newLoadedPage(t, api, ReconcileRefetch)
	require.NoError(t, p.OpenEdit(context.Background(), "a"))
	require.NoError(t, p.SetField(FieldTitle, "Changed"))

	err := p.SubmitForm(context.Background())

	assert.ErrorIs(t, err, errBackend)
	s := p.State()
	assert.Equal(t, PhaseFormOpen, s.Phase)
	assert.Equal(t, []model.Event{a}, s.Events)
	require.NotNil(t, s.Form)
	assert.Equal(t, MsgSaveFailed, s.Form.Message)
	assert.Equal(t, "Changed", s.Form.Values.Title)
	assert.Equal(t, 1, api.Calls("list"))
}

func TestPage_OpenEditFetchesWhenNotLoaded(t *testing.T) {
	remote := model.Event{ID: "x", Title: "Remote", Date: "2025-05-05"}
	api := &mockAPI{
		getFunc: func(_ context.Context, id string) (model.Event, error) {
			if id == "x" {
				return remote, nil
			}
			return model.Event{}, errBackend
		},
	}
	p := NewPage(api, ReconcileRefetch, logger.Discard())

	require.NoError(t, p.OpenEdit(context.Background(), "x"))
	s := p.State()
	require.NotNil(t, s.Form)
	assert.Equal(t, remote, s.Form.Values)
	assert.True(t, s.Form.IsEdit())

	err := p.OpenEdit(context.Background(), "missing")
	assert.ErrorIs(t, err, errBackend)
	assert.Equal(t, MsgNotFound, p.State().Message)
}

func TestPage_CancelForm(t *testing.T) {
	p := newLoadedPage(t, &mockAPI{listFunc: listOf()}, ReconcileRefetch)

	assert.ErrorIs(t, p.CancelForm(), ErrNoForm)

	p.OpenAdd()
	require.Equal(t, PhaseFormOpen, p.State().Phase)
	require.NoError(t, p.CancelForm())

	s := p.State()
	assert.Equal(t, PhaseReady, s.Phase)
	assert.Nil(t, s.Form)
}

func TestPage_SubmitWithoutForm(t *testing.T) {
	p := newLoadedPage(t, &mockAPI{listFunc: listOf()}, ReconcileRefetch)

	assert.ErrorIs(t, p.SubmitForm(context.Background()), ErrNoForm)
	assert.ErrorIs(t, p.SetField(FieldTitle, "x"), ErrNoForm)
}

func TestPage_SubmitBusy(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	api := &mockAPI{
		listFunc: listOf(),
		createFunc: func(_ context.Context, draft model.Event) (model.Event, error) {
			close(started)
			<-release
			draft.ID = "1"
			return draft, nil
		},
	}
	p := newLoadedPage(t, api, ReconcileLocal)
	p.OpenAdd()
	require.NoError(t, p.SetField(FieldTitle, "A"))
	require.NoError(t, p.SetField(FieldDate, "2025-01-01"))

	done := make(chan error, 1)
	go func() { done <- p.SubmitForm(context.Background()) }()
	<-started

	assert.ErrorIs(t, p.SubmitForm(context.Background()), ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, api.Calls("create"))
}

func TestPage_SubscribeReceivesSnapshots(t *testing.T) {
	a := model.Event{ID: "a", Title: "A", Date: "2025-01-01"}
	p := NewPage(&mockAPI{listFunc: listOf(a)}, ReconcileRefetch, logger.Discard())

	var phases []Phase
	unsubscribe := p.Subscribe(func(s State) {
		phases = append(phases, s.Phase)
		// снимок можно менять, не затрагивая страницу
		s.Events = nil
	})

	require.NoError(t, p.Load(context.Background()))
	unsubscribe()
	p.OpenAdd()

	assert.Equal(t, []Phase{PhaseLoading, PhaseReady}, phases)
	assert.Equal(t, []model.Event{a}, p.State().Events)
}

func TestParseReconcile(t *testing.T) {
	r, err := ParseReconcile("")
	require.NoError(t, err)
	assert.Equal(t, ReconcileRefetch, r)

	r, err = ParseReconcile("local")
	require.NoError(t, err)
	assert.Equal(t, ReconcileLocal, r)

	_, err = ParseReconcile("optimistic")
	assert.Error(t, err)
}

func TestPage_DeleteOnUnmountedPageLoadsFirst(t *testing.T) {
	a := model.Event{ID: "a", Title: "A", Date: "2025-01-01"}
	b := model.Event{ID: "b", Title: "B", Date: "2025-01-02"}
	api := &mockAPI{listFunc: listOf(a, b)}
	p := NewPage(api, ReconcileRefetch, logger.Discard())

	require.NoError(t, p.Delete(context.Background(), "a"))

	s := p.State()
	assert.Equal(t, PhaseReady, s.Phase)
	assert.Equal(t, []model.Event{b}, s.Events)
	assert.Equal(t, 1, api.Calls("list"))

	// уже загруженная страница удаляет без повторного запроса списка
	require.NoError(t, p.Delete(context.Background(), "b"))
	assert.Empty(t, p.State().Events)
	assert.Equal(t, 1, api.Calls("list"))
}
