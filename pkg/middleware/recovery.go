package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	apperrors "github.com/campus-eats/appkit/pkg/errors"
	"github.com/campus-eats/appkit/pkg/httputil"
)

// Recovery recovers from handler panics and answers a 500 instead of
// crashing the process.
func Recovery(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					l.ErrorContext(r.Context(), "panic recovered",
						slog.Any("panic", rec),
						slog.String("stack", string(debug.Stack())),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
					)

					httputil.WriteJSON(w, http.StatusInternalServerError, httputil.Response{
						Error: &httputil.ErrorResponse{
							Code:    apperrors.CodeInternalServerError,
							Message: apperrors.UserMessage(apperrors.CodeInternalServerError, ""),
						},
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
