package converter

import (
	"fmt"
	"io"
	"time"

	"github.com/ecuevas97/PartyPal/internal/model"

	ics "github.com/arran4/golang-ical"
)

// productID идентификатор генератора календаря (PRODID)
const productID = "-//PartyPal//Events//EN"

// ModelsToCalendar конвертирует события в iCalendar.
// Каждое событие становится однодневным VEVENT; события с невалидной датой пропускаются.
func ModelsToCalendar(events []model.Event, stamp time.Time) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName("PartyPal")

	for _, event := range events {
		day, err := event.Day()
		if err != nil {
			continue
		}
		ModelToVEvent(cal.AddEvent(event.ID+"@partypal"), event, day, stamp)
	}

	return cal
}

// ModelToVEvent заполняет VEVENT полями события
func ModelToVEvent(ve *ics.VEvent, event model.Event, day, stamp time.Time) {
	ve.SetDtStampTime(stamp)
	ve.SetAllDayStartAt(day)
	ve.SetAllDayEndAt(day.AddDate(0, 0, 1))
	ve.SetSummary(event.Title)

	if event.Location != "" {
		ve.SetLocation(event.Location)
	}
	if event.Description != "" {
		ve.SetDescription(event.Description)
	}
	if event.Image != "" {
		ve.SetURL(event.Image)
	}

	// "я иду" отображается как подтвержденное участие
	if event.IsAttending {
		ve.SetStatus(ics.ObjectStatusConfirmed)
	} else {
		ve.SetStatus(ics.ObjectStatusTentative)
	}
}

// VEventToModel конвертирует VEVENT обратно в событие (без ID)
func VEventToModel(ve *ics.VEvent) model.Event {
	var event model.Event

	if p := ve.GetProperty(ics.ComponentPropertySummary); p != nil {
		event.Title = p.Value
	}
	if p := ve.GetProperty(ics.ComponentPropertyLocation); p != nil {
		event.Location = p.Value
	}
	if p := ve.GetProperty(ics.ComponentPropertyDescription); p != nil {
		event.Description = p.Value
	}
	if p := ve.GetProperty(ics.ComponentPropertyUrl); p != nil {
		event.Image = p.Value
	}
	if p := ve.GetProperty(ics.ComponentPropertyStatus); p != nil {
		event.IsAttending = p.Value == string(ics.ObjectStatusConfirmed)
	}
	if day, err := ve.GetAllDayStartAt(); err == nil {
		event.Date = day.Format(model.DateLayout)
	}

	return event
}

// CalendarToModels читает iCalendar и возвращает черновики событий в порядке файла
func CalendarToModels(r io.Reader) ([]model.Event, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("ics.ParseCalendar: %w", err)
	}

	vevents := cal.Events()
	drafts := make([]model.Event, 0, len(vevents))
	for _, ve := range vevents {
		drafts = append(drafts, VEventToModel(ve))
	}
	return drafts, nil
}
