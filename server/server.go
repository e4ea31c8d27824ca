package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/adminpro/storefront-admin/app/access"
	"github.com/adminpro/storefront-admin/app/analytics"
	"github.com/adminpro/storefront-admin/app/api"
	"github.com/adminpro/storefront-admin/app/categories"
	"github.com/adminpro/storefront-admin/app/products"
)

// Pinger reports whether a backing service is reachable. *sql.DB fits.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handlers struct {
	Auth       *access.Authenticator
	Session    *access.SessionHandler
	Categories *categories.CategoryHandler
	Products   *products.ProductHandler
	Analytics  *analytics.AnalyticsHandler
	DB         Pinger
}

// NewRouter builds the route table. Every /api route except the session
// probe requires an admin.
func NewRouter(h Handlers, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	admin := func(f http.HandlerFunc) http.Handler {
		return access.RequireAdmin(h.Auth, log, f)
	}

	// Categories
	mux.Handle("GET /api/categories", admin(h.Categories.HandleGetAll))
	mux.Handle("POST /api/categories", admin(h.Categories.HandleCreate))
	mux.Handle("DELETE /api/categories", admin(h.Categories.HandleDelete))
	mux.Handle("POST /api/categories/edit", admin(h.Categories.HandleEdit))

	// Products
	mux.Handle("GET /api/products", admin(h.Products.HandleGetAll))
	mux.Handle("POST /api/products", admin(h.Products.HandleCreate))
	mux.Handle("DELETE /api/products", admin(h.Products.HandleDelete))
	mux.Handle("POST /api/products/edit", admin(h.Products.HandleEdit))

	mux.Handle("GET /api/analytics", admin(h.Analytics.HandleGet))
	mux.HandleFunc("GET /api/session", h.Session.HandleGet)
	mux.HandleFunc("GET /healthz", health(h.DB))

	for _, path := range []string{
		"/api/categories",
		"/api/categories/edit",
		"/api/products",
		"/api/products/edit",
		"/api/analytics",
		"/api/session",
		"/healthz",
	} {
		mux.HandleFunc(path, api.MethodNotAllowed)
	}

	return withRequestID(withLogging(log, withRecover(log, mux)))
}

func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				api.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// New wraps handler in an http.Server. WriteTimeout covers an image upload
// round trip.
func New(addr string, handler http.Handler, log *zap.Logger) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          zap.NewStdLog(log.Named("http")),
	}
}

// Run serves until ctx is done, then shuts down within timeout.
func Run(ctx context.Context, srv *http.Server, timeout time.Duration, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
