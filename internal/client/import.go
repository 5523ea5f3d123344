package client

import (
	"context"
	"io"
	"log/slog"

	"github.com/ecuevas97/PartyPal/internal/converter"
	"github.com/ecuevas97/PartyPal/internal/model"
)

// ImportResult итог импорта календаря
type ImportResult struct {
	Created []model.Event
	// Skipped VEVENT без summary или даты
	Skipped int
}

// ImportCalendar создает по событию на каждый VEVENT из r.
// Первая ошибка backend-а прерывает импорт, уже созданные события остаются в результате.
func (c *Client) ImportCalendar(ctx context.Context, r io.Reader) (ImportResult, error) {
	var result ImportResult

	drafts, err := converter.CalendarToModels(r)
	if err != nil {
		return result, err
	}

	for _, draft := range drafts {
		if missing := draft.MissingRequired(); len(missing) > 0 {
			slog.Warn("skip calendar entry", "title", draft.Title, "missing", missing)
			result.Skipped++
			continue
		}

		created, err := c.Create(ctx, draft)
		if err != nil {
			return result, err
		}
		result.Created = append(result.Created, created)
	}

	return result, nil
}
