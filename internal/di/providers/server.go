package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/vivilio/vivilio-server/internal/api"
	"github.com/vivilio/vivilio-server/internal/config"
	"github.com/vivilio/vivilio-server/internal/logger"
	"github.com/vivilio/vivilio-server/internal/service"
)

// formOverhead is the multipart budget for the text fields sent with a cover.
const formOverhead = 1 << 20

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.api.Close()
	return err
}

// ProvideHTTPServer builds the API handler and starts listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	covers := do.MustInvoke[*CoverStorage](i)
	metricsHandle := do.MustInvoke[*MetricsHandle](i)

	services := &api.Services{
		Auth:      do.MustInvoke[*service.AuthService](i),
		Profile:   do.MustInvoke[*service.ProfileService](i),
		Book:      do.MustInvoke[*service.BookService](i),
		Review:    do.MustInvoke[*service.ReviewService](i),
		Community: do.MustInvoke[*service.CommunityService](i),
		Content:   do.MustInvoke[*service.ContentService](i),
		Search:    do.MustInvoke[*service.SearchService](i),
	}

	handler := api.NewServer(storeHandle.Store, services, covers.Storage, api.Options{
		CORSOrigins:       cfg.Server.CORSOrigins,
		AuthRatePerMinute: cfg.Auth.RatePerMinute,
		MaxUploadSize:     cfg.Covers.MaxBytes() + formOverhead,
		Metrics:           metricsHandle.Registry,
	}, log.Component("api"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr, "metrics", metricsHandle.Registry != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, api: handler}, nil
}
