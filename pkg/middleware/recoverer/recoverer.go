// Package recoverer turns handler panics into error responses.
package recoverer

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// New returns a middleware that recovers from panics in next, logs them and lets respond write
// the response. http.ErrAbortHandler is re-panicked so the server aborts the connection.
func New(logger *slog.Logger, respond func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	const op = "middleware.recoverer.New"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				err, ok := rvr.(error)
				if !ok {
					err = fmt.Errorf("%v", rvr)
				}

				logger.ErrorContext(r.Context(), "something went wrong, panic occurred",
					slog.Group(op,
						slog.Any("err", err),
						slog.String("stack", string(debug.Stack())),
					),
				)

				respond(w, r, err)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
