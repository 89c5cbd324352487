// Package backend selects and builds the data backend the web app talks to:
// the hosted PostgREST service, the local-first SQLite store, or the seeded
// in-memory store used for demos.
package backend

import (
	"context"

	"github.com/frankmaximo93/shared-financial-journey/internal/datasource"
	"github.com/frankmaximo93/shared-financial-journey/internal/participants"
)

// CleanupFunc releases backend resources at shutdown.
type CleanupFunc func() error

// Result bundles the backend with its cleanup hook.
type Result struct {
	Source  datasource.Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config, registry *participants.Registry) (*Result, error)
}

// Type names one of the supported backends.
type Type string

const (
	RemoteBackend Type = "remote"
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case RemoteBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
