// Package api implements the easel document service.
//
// The service exposes document persistence over HTTP so that multiple editor
// hosts can share a single store. It is the server side of store.RemoteStore:
// any store provider (file, redis, mongo) can be published through it.
//
// # Routes
//
//   - GET    /documents        list document metadata
//   - GET    /documents/{id}   fetch a full document
//   - PUT    /documents/{id}   create or replace a document
//   - DELETE /documents/{id}   delete a document
//   - GET    /healthz          liveness probe
//
// Error responses carry a JSON body with a machine-readable code and a
// human-readable message.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/easelkit/easel/pkg/errors"
	"github.com/easelkit/easel/pkg/scene"
	"github.com/easelkit/easel/pkg/store"
)

// maxDocumentBytes bounds PUT request bodies.
const maxDocumentBytes = 16 << 20

// Server serves documents from an underlying store.
type Server struct {
	store  store.Store
	logger *log.Logger
}

// NewServer creates a document service backed by st.
// If logger is nil, log.Default() is used.
func NewServer(st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{store: st, logger: logger}
}

// Router builds the HTTP handler for the service.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/documents", func(r chi.Router) {
		r.Get("/", s.listDocuments)
		r.Get("/{id}", s.getDocument)
		r.Put("/{id}", s.putDocument)
		r.Delete("/{id}", s.deleteDocument)
	})

	return r
}

// Serve runs the service on addr until ctx is cancelled, then shuts down
// gracefully with a short drain window.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Document service listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	infos, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if infos == nil {
		infos = []store.Info{}
	}
	s.writeJSON(w, http.StatusOK, infos)
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.store.Load(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	data, err := scene.MarshalDocument(doc)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) putDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateDocumentID(id); err != nil {
		s.writeError(w, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentBytes+1))
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body"))
		return
	}
	if len(body) > maxDocumentBytes {
		s.writeError(w, errors.New(errors.ErrCodeInvalidDocument, "document exceeds %d bytes", maxDocumentBytes))
		return
	}

	doc, err := scene.UnmarshalDocument(body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if doc.ID != id {
		s.writeError(w, errors.New(errors.ErrCodeInvalidDocument,
			"document id %q does not match path id %q", doc.ID, id))
		return
	}

	if err := s.store.Save(r.Context(), doc); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// RESPONSES
// =============================================================================

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps an error to an HTTP status by its code and writes the
// JSON error body.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)

	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeDocumentNotFound, errors.ErrCodeObjectNotFound,
		errors.ErrCodeVersionNotFound, errors.ErrCodeNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidDocument,
		errors.ErrCodeInvalidObject, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidName:
		status = http.StatusBadRequest
	case errors.ErrCodeStoreConflict:
		status = http.StatusConflict
	case errors.ErrCodeStoreUnavailable:
		status = http.StatusBadGateway
	}

	if status >= 500 {
		s.logger.Error("Request failed", "status", status, "error", err)
	}
	s.writeJSON(w, status, errorBody{Code: string(code), Message: errors.UserMessage(err)})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

// logRequests logs every request at debug level with method, path, status,
// and duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}
