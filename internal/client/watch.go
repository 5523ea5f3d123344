package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ecuevas97/PartyPal/internal/model"
)

// maxChangeLine предел одной строки ленты. Backend принимает тело до 1 MiB,
// а JSON-кодирование может раздуть строки (\u003c и т.п.), поэтому запас больше.
const maxChangeLine = 8 << 20

// Watch читает ленту изменений /events/changes и вызывает handle для каждого изменения.
// Таймаут клиента здесь не применяется, поток живет до отмены ctx или ошибки handle.
func (c *Client) Watch(ctx context.Context, handle func(model.Change) error) error {
	const op = "watch changes"
	target := c.baseURL + eventsPath + "/changes"
	fail := func(status int, message string, err error) error {
		return &TransportError{Op: op, Method: http.MethodGet, URL: target, StatusCode: status, Message: message, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fail(0, "", fmt.Errorf("http.NewRequestWithContext: %w", err))
	}
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(0, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fail(resp.StatusCode, readErrorMessage(resp.Body), fmt.Errorf("unexpected status %s", resp.Status))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxChangeLine)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var change model.Change
		if err := json.Unmarshal(line, &change); err != nil {
			return fail(resp.StatusCode, "", fmt.Errorf("decode change: %w", err))
		}
		if err := handle(change); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil && !errors.Is(ctx.Err(), context.Canceled) {
		return fail(resp.StatusCode, "", err)
	}
	return nil
}
