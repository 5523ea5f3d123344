package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ecuevas97/PartyPal/internal/model"
)

// Имена полей формы, которые принимает Set
const (
	FieldTitle       = "title"
	FieldDate        = "date"
	FieldLocation    = "location"
	FieldDescription = "description"
	FieldImage       = "image"
)

var (
	// ErrRequired возвращается Submit, если не заполнены title или date
	ErrRequired = errors.New("required field is empty")
	// ErrUnknownField возвращается Set для поля, которого нет у события
	ErrUnknownField = errors.New("unknown form field")
)

// Form хранит рабочую копию события, которое редактирует пользователь.
// Сама форма ничего не сохраняет: сохранение делает обработчик, переданный в Submit.
type Form struct {
	source model.Event
	values model.Event
	seeded bool
}

// NewForm создает форму. seed == nil означает пустую форму создания.
func NewForm(seed *model.Event) *Form {
	f := &Form{}
	f.Seed(seed)
	return f
}

// Seed перезаполняет форму, если пришла другая исходная запись.
// Повторный Seed той же записью не трогает уже введенные значения.
func (f *Form) Seed(source *model.Event) {
	var next model.Event
	if source != nil {
		next = *source
	}
	if f.seeded && next == f.source {
		return
	}
	f.seeded = true
	f.source = next
	f.values = next
}

// Set меняет ровно одно текстовое поле рабочей копии
func (f *Form) Set(field, value string) error {
	switch field {
	case FieldTitle:
		f.values.Title = value
	case FieldDate:
		f.values.Date = value
	case FieldLocation:
		f.values.Location = value
	case FieldDescription:
		f.values.Description = value
	case FieldImage:
		f.values.Image = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// SetAttending меняет флаг "I'm attending"
func (f *Form) SetAttending(attending bool) {
	f.values.IsAttending = attending
}

// Values возвращает копию рабочих значений
func (f *Form) Values() model.Event {
	return f.values
}

// IsEdit сообщает, что форма редактирует сохраненную запись
func (f *Form) IsEdit() bool {
	return !f.source.IsDraft()
}

// Submit передает полную рабочую копию в onSubmit.
// Если обязательные поля пусты, onSubmit не вызывается.
func (f *Form) Submit(onSubmit func(model.Event) error) error {
	if missing := f.values.MissingRequired(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrRequired, strings.Join(missing, ", "))
	}
	return onSubmit(f.values)
}

// Cancel вызывает onCancel без побочных эффектов для формы
func (f *Form) Cancel(onCancel func()) {
	if onCancel != nil {
		onCancel()
	}
}
