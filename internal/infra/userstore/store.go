package userstore

import (
	"github.com/avallejos/visitauth/internal/domain/auth"
	"github.com/avallejos/visitauth/internal/domain/visits"
)

// Store is the full persistence surface: user accounts, the refresh-token
// denylist, and visit history. The local, remote and memory adapters all
// satisfy it; one is selected from configuration at startup.
type Store interface {
	auth.Store
	visits.Store
	Close() error
}
