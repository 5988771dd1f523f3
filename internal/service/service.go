// Package service implements the Vivilio core: identity, catalog, community
// graph, content tree and search. Every mutating operation runs the same
// pipeline: the request's field table is validated (first failure wins), then
// referenced entities are resolved in order and the acting user is
// authorized, and only then is the mutation applied. Member management
// authorizes the actor before it looks at the target.
package service

import (
	"errors"
	"fmt"
	"log/slog"

	domainerrors "github.com/vivilio/vivilio-server/internal/errors"
	"github.com/vivilio/vivilio-server/internal/search"
	"github.com/vivilio/vivilio-server/internal/store"
	"github.com/vivilio/vivilio-server/internal/validation"
)

// validate is the shared field-table validator.
var validate = validation.New()

// Indexer receives documents after successful mutations.
type Indexer interface {
	Index(doc *search.Document) error
	Delete(id string) error
	Count() (uint64, error)
}

// OperationRecorder counts domain operations by outcome and tracks the size
// of the search index.
type OperationRecorder interface {
	ObserveOperation(operation string, err error)
	SetSearchDocuments(n uint64)
}

type noopIndexer struct{}

func (noopIndexer) Index(*search.Document) error { return nil }
func (noopIndexer) Delete(string) error          { return nil }
func (noopIndexer) Count() (uint64, error)       { return 0, nil }

type noopRecorder struct{}

func (noopRecorder) ObserveOperation(string, error) {}
func (noopRecorder) SetSearchDocuments(uint64)      {}

// Deps holds the collaborators shared by every service. Index and Metrics are
// optional.
type Deps struct {
	Store   store.Store
	Index   Indexer
	Metrics OperationRecorder
	Logger  *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Index == nil {
		d.Index = noopIndexer{}
	}
	if d.Metrics == nil {
		d.Metrics = noopRecorder{}
	}
	if d.Logger == nil {
		d.Logger = slog.New(slog.DiscardHandler)
	}
	return d
}

// observe records the outcome of op and passes err through.
func (d Deps) observe(op string, err error) error {
	d.Metrics.ObserveOperation(op, err)
	return err
}

// index pushes doc to the search index. Failures are logged, not returned:
// the store is the source of truth and the index is rebuilt on startup.
func (d Deps) index(doc *search.Document) {
	if err := d.Index.Index(doc); err != nil {
		d.Logger.Warn("failed to index document", "id", doc.ID, "type", doc.Type, "error", err)
		return
	}
	d.recordIndexSize(d.Index)
}

func (d Deps) unindex(id string) {
	if err := d.Index.Delete(id); err != nil {
		d.Logger.Warn("failed to remove document from index", "id", id, "error", err)
		return
	}
	d.recordIndexSize(d.Index)
}

// recordIndexSize publishes the document count of idx to the metrics gauge.
func (d Deps) recordIndexSize(idx interface{ Count() (uint64, error) }) {
	n, err := idx.Count()
	if err != nil {
		d.Logger.Debug("failed to count index documents", "error", err)
		return
	}
	d.Metrics.SetSearchDocuments(n)
}

// notFound maps a missing row to a NOT_FOUND domain error carrying msg.
// Other errors pass through unchanged.
func notFound(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFound(msg)
	}
	return err
}

// conflict maps a uniqueness violation to a CONFLICT domain error carrying
// msg. Other errors are wrapped with action.
func conflict(err error, msg, action string) error {
	if errors.Is(err, store.ErrAlreadyExists) {
		return domainerrors.Conflict(msg)
	}
	return fmt.Errorf("%s: %w", action, err)
}
