package store

import (
	"github.com/mkweon/rollcall/internal/roster"
)

// Store persists the whole process document. Load never fails on absent
// or empty storage: it bootstraps the default placeholder instead, so a
// fresh install behaves like an empty tracker rather than an error.
type Store interface {
	Load() (roster.Data, error)
	Save(d roster.Data) error
	Path() string
}
