package router

import (
	"net/http"
	"slices"
	"strconv"

	"github.com/shandysiswandi/gocrypt/internal/pkg/config"
)

// middlewareMaintenance answers 503 for the routes listed in
// app.maintenance.endpoints, or for every route while app.maintenance.enabled
// is true. Keys are read on each request so a config reload applies at once.
func middlewareMaintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		if cfg == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.GetBool("app.maintenance.enabled") &&
				!slices.Contains(cfg.GetArray("app.maintenance.endpoints"), matchedRoutePath(r)) {
				next.ServeHTTP(w, r)
				return
			}

			if s := cfg.GetInt("app.maintenance.retry_after_seconds"); s > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(s))
			}
			writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
		})
	}
}
