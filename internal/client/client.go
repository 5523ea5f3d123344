package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ecuevas97/PartyPal/internal/model"
)

const (
	// DefaultBaseURL адрес backend-а по умолчанию
	DefaultBaseURL = "http://localhost:3001"
	// DefaultTimeout таймаут одного запроса по умолчанию
	DefaultTimeout = 10 * time.Second

	eventsPath = "/events"
	// maxErrorBody сколько байт тела ответа читаем при ошибке
	maxErrorBody = 4096
)

// errDraftHasID возвращается Create, если у "черновика" уже есть ID
var errDraftHasID = errors.New("draft must not have an id")

// Client обращается к REST ресурсу /events
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// Option настраивает Client
type Option func(*Client)

// WithHTTPClient подменяет http.Client (например, для тестов)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout задает таймаут одного запроса, 0 отключает его
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// NewClient создает клиента для backend-а по адресу baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL возвращает адрес backend-а
func (c *Client) BaseURL() string {
	return c.baseURL
}

// List возвращает все события в порядке backend-а
func (c *Client) List(ctx context.Context) ([]model.Event, error) {
	var list []model.Event
	if err := c.do(ctx, "list events", http.MethodGet, eventsPath, nil, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Event{}
	}
	return list, nil
}

// Get возвращает одно событие по ID
func (c *Client) Get(ctx context.Context, id string) (model.Event, error) {
	var event model.Event
	if err := c.do(ctx, "get event", http.MethodGet, eventPath(id), nil, &event); err != nil {
		return model.Event{}, err
	}
	return event, nil
}

// Create сохраняет черновик и возвращает запись с ID, назначенным сервером
func (c *Client) Create(ctx context.Context, draft model.Event) (model.Event, error) {
	const op = "create event"
	if !draft.IsDraft() {
		return model.Event{}, &TransportError{
			Op:     op,
			Method: http.MethodPost,
			URL:    c.baseURL + eventsPath,
			Err:    errDraftHasID,
		}
	}

	var created model.Event
	if err := c.do(ctx, op, http.MethodPost, eventsPath, draft, &created); err != nil {
		return model.Event{}, err
	}
	return created, nil
}

// Update полностью заменяет событие с указанным ID.
// ID в теле всегда перезаписывается значением id.
func (c *Client) Update(ctx context.Context, id string, event model.Event) (model.Event, error) {
	event.ID = id

	var updated model.Event
	if err := c.do(ctx, "update event", http.MethodPut, eventPath(id), event, &updated); err != nil {
		return model.Event{}, err
	}
	return updated, nil
}

// Delete удаляет событие
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, "delete event", http.MethodDelete, eventPath(id), nil, nil)
}

func eventPath(id string) string {
	return eventsPath + "/" + url.PathEscape(id)
}

// do выполняет запрос и декодирует JSON ответ в out (если out не nil).
// Любая ошибка возвращается как *TransportError.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	target := c.baseURL + path
	fail := func(status int, message string, err error) error {
		return &TransportError{
			Op:         op,
			Method:     method,
			URL:        target,
			StatusCode: status,
			Message:    message,
			Err:        err,
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fail(0, "", fmt.Errorf("json.Marshal: %w", err))
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fail(0, "", fmt.Errorf("http.NewRequestWithContext: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(0, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := readErrorMessage(resp.Body)
		return fail(resp.StatusCode, message, fmt.Errorf("unexpected status %s", resp.Status))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fail(resp.StatusCode, "", fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// readErrorMessage достает поле "error" из тела ответа, иначе возвращает тело как есть
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}

	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(data))
}
