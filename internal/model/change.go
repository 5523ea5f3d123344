package model

import "time"

// ChangeType вид изменения события
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// Change одно изменение коллекции событий, строка ленты /events/changes
type Change struct {
	Type  ChangeType `json:"type"`
	Event Event      `json:"event"`
	At    time.Time  `json:"at"`
}
