// Package store holds the workbook currently served by the API.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrEmpty = errors.New("no workbook stored")

// Snapshot is one saved workbook revision.
type Snapshot struct {
	Revision uuid.UUID
	Filename string
	Data     []byte
	SavedAt  time.Time
}

// WorkbookStore is a single-writer, multi-reader holder of the current
// workbook. Load never observes a partially saved snapshot.
type WorkbookStore interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// Prepare fills in the revision and timestamp if they are unset.
func Prepare(snap *Snapshot) {
	if snap.Revision == uuid.Nil {
		snap.Revision = uuid.New()
	}
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now().UTC()
	}
}
