package providers

import (
	"github.com/samber/do/v2"

	"github.com/vivilio/vivilio-server/internal/auth"
	"github.com/vivilio/vivilio-server/internal/logger"
	"github.com/vivilio/vivilio-server/internal/service"
)

// ProvideServiceDeps provides the collaborators shared by every service.
func ProvideServiceDeps(i do.Injector) (service.Deps, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	metricsHandle := do.MustInvoke[*MetricsHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	deps := service.Deps{
		Store:  storeHandle.Store,
		Index:  indexHandle.Index,
		Logger: log.Component("service"),
	}
	// A typed nil would defeat the no-op default.
	if metricsHandle.Registry != nil {
		deps.Metrics = metricsHandle.Registry
	}
	return deps, nil
}

// ProvideAuthService provides the registration and login service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	deps := do.MustInvoke[service.Deps](i)
	hasher := do.MustInvoke[*auth.Hasher](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	return service.NewAuthService(deps, hasher, tokens), nil
}

// ProvideProfileService provides the profile and strengths service.
func ProvideProfileService(i do.Injector) (*service.ProfileService, error) {
	return service.NewProfileService(do.MustInvoke[service.Deps](i)), nil
}

// ProvideBookService provides the book catalog service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	deps := do.MustInvoke[service.Deps](i)
	covers := do.MustInvoke[*CoverStorage](i)
	return service.NewBookService(deps, covers.Storage), nil
}

// ProvideReviewService provides the review service.
func ProvideReviewService(i do.Injector) (*service.ReviewService, error) {
	return service.NewReviewService(do.MustInvoke[service.Deps](i)), nil
}

// ProvideCommunityService provides the community and membership service.
func ProvideCommunityService(i do.Injector) (*service.CommunityService, error) {
	return service.NewCommunityService(do.MustInvoke[service.Deps](i)), nil
}

// ProvideContentService provides the post and comment service.
func ProvideContentService(i do.Injector) (*service.ContentService, error) {
	return service.NewContentService(do.MustInvoke[service.Deps](i)), nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	deps := do.MustInvoke[service.Deps](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	return service.NewSearchService(deps, indexHandle.Index), nil
}
