package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/vivilio/vivilio-server/internal/config"
	"github.com/vivilio/vivilio-server/internal/logger"
	"github.com/vivilio/vivilio-server/internal/search"
	"github.com/vivilio/vivilio-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve discovery index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewIndex(search.Options{
		DataPath: cfg.Storage.DataPath,
		Logger:   log.Component("search"),
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.Count()
	log.Info("Search index initialized", "documents", docCount, "created", index.Created())

	return &SearchIndexHandle{Index: index}, nil
}

// EnsureSearchIndexed rebuilds the index from the store when it is new or
// empty. Failures leave the server running on the substring searches.
func EnsureSearchIndexed(i do.Injector) {
	searchService := do.MustInvoke[*service.SearchService](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := searchService.EnsureIndexed(context.Background()); err != nil {
		log.Error("Initial search reindex failed", "error", err)
		return
	}

	count, _ := searchService.Count()
	log.Info("Search index ready", "documents", count)
}
