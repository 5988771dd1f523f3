// Package di provides dependency injection configuration for the Vivilio server.
package di

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/vivilio/vivilio-server/internal/auth"
	"github.com/vivilio/vivilio-server/internal/config"
	"github.com/vivilio/vivilio-server/internal/di/providers"
	"github.com/vivilio/vivilio-server/internal/logger"
	"github.com/vivilio/vivilio-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideMetrics)

	// Persistence
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideCoverStorage)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Auth
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideHasher)

	// Business services
	do.Provide(injector, providers.ProvideServiceDeps)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideProfileService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideReviewService)
	do.Provide(injector, providers.ProvideCommunityService)
	do.Provide(injector, providers.ProvideContentService)
	do.Provide(injector, providers.ProvideSearchService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes every component, fills the search index if needed
// and starts the HTTP server.
func Bootstrap(injector *do.RootScope) (err error) {
	// MustInvoke panics on provider errors; surface them as an error instead.
	defer func() {
		if r := recover(); r != nil {
			err = toError(r)
		}
	}()

	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.MetricsHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.CoverStorage](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.ProfileService](injector)
	_ = do.MustInvoke[*service.BookService](injector)
	_ = do.MustInvoke[*service.ReviewService](injector)
	_ = do.MustInvoke[*service.CommunityService](injector)
	_ = do.MustInvoke[*service.ContentService](injector)
	_ = do.MustInvoke[*service.SearchService](injector)

	// Index before accepting traffic so discovery never sees a half-built index.
	providers.EnsureSearchIndexed(injector)

	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}

func toError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("bootstrap: %v", r)
}
