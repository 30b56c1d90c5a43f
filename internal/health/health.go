// Package health serves liveness endpoints for mounted adapters,
// independent of GraphQL execution.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Status is the result of a health check.
type Status struct {
	Healthy   bool           `json:"healthy"`
	Status    string         `json:"status"`
	Message   string         `json:"message,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
}

// CheckFunc produces the current health status.
type CheckFunc func(ctx context.Context) Status

// Healthy returns a healthy status with the given message.
func Healthy(message string) Status {
	return Status{Healthy: true, Status: "healthy", Message: message, Timestamp: time.Now().UTC()}
}

// Unhealthy returns an unhealthy status with the given message.
func Unhealthy(message string) Status {
	return Status{Healthy: false, Status: "unhealthy", Message: message, Timestamp: time.Now().UTC()}
}

// Responder answers health-check requests. The zero value is not usable;
// construct with NewResponder.
type Responder struct {
	check    CheckFunc
	disabled bool
}

// NewResponder builds a Responder around check. A nil check always reports
// healthy with an "ok" message.
func NewResponder(check CheckFunc) *Responder {
	if check == nil {
		check = func(ctx context.Context) Status { return Healthy("ok") }
	}
	return &Responder{check: check}
}

// Disabled returns a Responder whose endpoint answers 404 for every request,
// signalling that health checks are off rather than healthy by default.
func Disabled() *Responder {
	return &Responder{disabled: true}
}

// Check runs the health check.
func (r *Responder) Check(ctx context.Context) Status {
	if r.disabled {
		return Unhealthy("health checks disabled")
	}
	return r.check(ctx)
}

// IsDisabled reports whether the responder is switched off.
func (r *Responder) IsDisabled() bool { return r.disabled }

func (r *Responder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if r.disabled {
		http.NotFound(w, req)
		return
	}
	status := r.check(req.Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}
