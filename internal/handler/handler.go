// Package handler provides HTTP request handlers for the REST API.
package handler

import "github.com/vyrodovalexey/shoplist/internal/model"

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status string `json:"status"`
}

// Notifier receives a ChangeEvent after every successful write.
type Notifier interface {
	Broadcast(event model.ChangeEvent)
}

type nopNotifier struct{}

func (nopNotifier) Broadcast(model.ChangeEvent) {}
