package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout формат даты события на границе API (ISO 8601, только дата)
const DateLayout = "2006-01-02"

// ErrValidation возвращается (обернутой), когда событие не проходит проверку
var ErrValidation = errors.New("validation failed")

// Event представляет событие (доменная модель и формат передачи по сети)
type Event struct {
	// ID назначается backend-ом, пустой у черновика
	ID          string `json:"id,omitempty" yaml:"id" db:"id"`
	// Title и Date обязательны, Date в формате YYYY-MM-DD
	Title       string `json:"title" yaml:"title" db:"title"`
	Date        string `json:"date" yaml:"date" db:"date"`
	Location    string `json:"location,omitempty" yaml:"location,omitempty" db:"location"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" db:"description"`
	// Image это URL изображения, пустой означает "без картинки"
	Image       string `json:"image,omitempty" yaml:"image,omitempty" db:"image"`
	IsAttending bool   `json:"isAttending,omitempty" yaml:"isAttending,omitempty" db:"is_attending"`
}

// IsDraft сообщает, что событие еще не сохранено на backend-е
func (e *Event) IsDraft() bool {
	return e.ID == ""
}

// MissingRequired возвращает имена обязательных полей, которые не заполнены
func (e *Event) MissingRequired() []string {
	var missing []string
	if strings.TrimSpace(e.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(e.Date) == "" {
		missing = append(missing, "date")
	}
	return missing
}

// Validate проверяет валидность события перед сохранением
func (e *Event) Validate() error {
	if missing := e.MissingRequired(); len(missing) > 0 {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidation, strings.Join(missing, ", "))
	}
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", ErrValidation, e.Date)
	}
	return nil
}

// Day возвращает дату события как time.Time (UTC, полночь)
func (e *Event) Day() (time.Time, error) {
	return time.Parse(DateLayout, e.Date)
}
