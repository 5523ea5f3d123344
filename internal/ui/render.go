package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"

	"github.com/ecuevas97/PartyPal/internal/model"
)

//go:embed templates/*.html
var templatesFS embed.FS

// EmptyListText текст пустого списка
const EmptyListText = "No events yet. Add one!"

// Renderer превращает State в HTML
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer разбирает встроенные шаблоны
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("template.ParseFS: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

type listView struct {
	Loading   bool
	Error     string
	Message   string
	Cards     []Card
	EmptyText string
}

type formView struct {
	Heading string
	Action  string
	Message string
	Values  model.Event
	// Missing форма не открыта (например, запись не найдена)
	Missing bool
}

// List рисует список событий
func (r *Renderer) List(w io.Writer, s State) error {
	v := listView{
		Loading:   s.Phase == PhaseLoading,
		Cards:     Cards(s.Events),
		EmptyText: EmptyListText,
	}
	if s.Phase == PhaseError {
		v.Error = s.Message
	} else {
		v.Message = s.Message
	}
	return r.tmpl.ExecuteTemplate(w, "list.html", v)
}

// Form рисует открытую форму. Без открытой формы показывается только сообщение.
func (r *Renderer) Form(w io.Writer, s State) error {
	if s.Form == nil {
		return r.tmpl.ExecuteTemplate(w, "form.html", formView{
			Heading: "Edit Event",
			Message: s.Message,
			Missing: true,
		})
	}

	v := formView{
		Heading: "Add Event",
		Action:  "/add",
		Message: s.Form.Message,
		Values:  s.Form.Values,
	}
	if s.Form.IsEdit() {
		v.Heading = "Edit Event"
		v.Action = "/edit/" + url.PathEscape(s.Form.TargetID)
	}
	return r.tmpl.ExecuteTemplate(w, "form.html", v)
}
