package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vivilio/vivilio-server/internal/http/response"
	"github.com/vivilio/vivilio-server/internal/media/images"
)

const msgImageNotFound = "Image's not found."

func (s *Server) registerImageRoutes() {
	s.router.Get(images.ReferencePrefix+"{filename}", s.handleServeImage)
}

// handleServeImage streams a stored cover. Names are random and never
// reused, so responses are cacheable for a week and revalidated by ETag.
func (s *Server) handleServeImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")

	f, err := s.covers.Open(name)
	if err != nil {
		if errors.Is(err, images.ErrNotFound) || errors.Is(err, images.ErrInvalidName) {
			response.NotFound(w, msgImageNotFound, s.logger)
			return
		}
		response.HandleError(w, err, s.logger)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if hash, err := s.covers.Hash(name); err == nil {
		w.Header().Set("ETag", `"`+hash+`"`)
	}
	w.Header().Set("Cache-Control", CacheOneWeek)

	http.ServeContent(w, r, name, info.ModTime(), f)
}
