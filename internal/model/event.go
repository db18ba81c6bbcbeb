package model

import (
	"fmt"
	"time"
)

// Change event entities.
const (
	EntityItem     = "item"
	EntityList     = "list"
	EntityCategory = "category"
	EntityUser     = "user"
)

// Change event actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ChangeEvent notifies subscribers that a backend record changed.
type ChangeEvent struct {
	Type      string    `json:"type"`
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	ID        string    `json:"id"`
	ListID    string    `json:"listId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeEvent creates a ChangeEvent with Type derived from entity and action.
func NewChangeEvent(entity, action, id, listID string) ChangeEvent {
	return ChangeEvent{
		Type:      fmt.Sprintf("%s_%s", entity, action),
		Entity:    entity,
		Action:    action,
		ID:        id,
		ListID:    listID,
		Timestamp: time.Now().UTC(),
	}
}
