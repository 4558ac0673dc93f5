package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campus-eats/appkit/internal/guard"
	"github.com/campus-eats/appkit/internal/identity"
	"github.com/campus-eats/appkit/pkg/httputil"
	"github.com/campus-eats/appkit/pkg/middleware"
)

// newRouter builds the chi router: JSON API under /api, guarded page routes,
// health and metrics endpoints.
func (a *App) newRouter(g *guard.Guard) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(a.logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.CORS(nil))
	r.Use(middleware.RequestLogging(a.logger))
	r.Use(middleware.IdentityContext(identity.KeyFunc(a.provider), a.logger))
	r.Use(middleware.RateLimit(a.cfg.RateLimitRPS, a.cfg.RateLimitBurst, a.logger))

	r.Get("/healthz", a.health.Live())
	r.Get("/readyz", a.health.Ready())
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		promhttp.Handler().ServeHTTP(w, req)
	})

	r.Get("/nav/resolve", a.handleNavResolve(g))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", a.handleLogin)
		r.Post("/auth/signup", a.handleSignUp)
		r.Post("/auth/logout", a.handleLogout)
		if a.localProvider != nil {
			r.Post("/auth/refresh", a.handleRefresh)
			r.Post("/auth/verify", a.handleVerify)
		}

		r.Get("/notifications", a.handleListNotifications)
		r.Post("/notifications", a.handleAddNotification)
		r.Delete("/notifications", a.handleClearNotifications)

		r.Get("/orders", a.handleListOrders)
		r.Post("/orders", a.handleRecordPurchase)
		r.Post("/orders/{id}/status", a.handleAdvanceOrder)

		r.Get("/coupons", a.handleListCoupons)
		r.Post("/coupons/{id}/use", a.handleUseCoupon)

		r.Get("/cart", a.handleGetCart)
		r.Post("/cart/items", a.handleAddCartItem)
		r.Delete("/cart", a.handleClearCart)

		r.Post("/likes", a.handleLike)
		r.Get("/ranking", a.handleRanking)
	})

	// Page routes go through the navigation guard; the shell answers them
	// with a route marker for the front end to render.
	page := http.HandlerFunc(a.handlePage)
	r.Group(func(r chi.Router) {
		r.Use(g.Middleware)
		for _, route := range guard.DefaultRoutes() {
			r.Get(route.Path, page)
		}
	})

	return r
}

func (a *App) handlePage(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]string{"path": r.URL.Path},
	})
}

func (a *App) handleNavResolve(g *guard.Guard) http.HandlerFunc {
	type resolution struct {
		Action   string `json:"action"`
		Location string `json:"location,omitempty"`
		Redirect string `json:"redirect,omitempty"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Query().Get("path")
		if path == "" {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "BAD_REQUEST", Message: "path query parameter is required"},
			})
			return
		}

		d := g.Evaluate(path)
		res := resolution{Action: "allow"}
		if d.Action == guard.Redirect {
			res.Action = "redirect"
			res.Location = d.Location
			res.Redirect = d.Query.Get("redirect")
		}
		httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: res})
	}
}
