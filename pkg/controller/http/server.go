package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/stoa-lab/salescredit/pkg/usecase"
	"github.com/stoa-lab/salescredit/pkg/utils/errutil"
	"github.com/stoa-lab/salescredit/pkg/utils/logging"
	"github.com/stoa-lab/salescredit/pkg/utils/safe"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
	authUC *usecase.AuthUseCase
}

type Options func(*Server)

// WithAuth sets the token-verifying auth use case. Without it the
// server rejects every request, so it is effectively required outside
// of tests.
func WithAuth(authUC *usecase.AuthUseCase) Options {
	return func(s *Server) {
		s.authUC = authUC
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware(s.authUC))

		r.Route("/claims", func(r chi.Router) {
			r.Post("/", s.submitClaim)
			r.Post("/turn", s.processTurn)
			r.Post("/processed", s.submitProcessed)
			r.Get("/", s.listClaims)
			r.Get("/{claimID}", s.getClaim)
		})

		r.Get("/balance", s.getBalance)
		r.Post("/ledger/{entryID}/redeem", s.redeemEntry)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/claims/pending", s.listPendingClaims)
			r.Post("/claims/{claimID}/start-review", s.startReview)
			r.Post("/claims/{claimID}/review", s.reviewClaim)
			r.Post("/ledger/adjust", s.adjustLedger)
			r.Get("/members/{memberID}/balance", s.getMemberBalance)
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return goerr.Wrap(usecase.ErrInvalidInput, "invalid request body", goerr.V("cause", err.Error()))
	}
	return nil
}
