package network

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"conclave.io/conclave/lib/metrics"
	"conclave.io/conclave/lib/network/httputils"
)

func RecoverMiddleware(printStack bool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if r := recover(); r != nil {
					err, ok := r.(error)
					if !ok {
						err = fmt.Errorf("panic: %v", r)
					}
					httputils.WriteJSONError(w, err)
					log.Error("recover an panic", "err", err)
					if printStack == true {
						debug.PrintStack()
					}
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func MetricsMiddleware(m *metrics.APIMetrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			begin := time.Now()

			writer := &HTTP2ResponseLog15Writer{w: w}
			next.ServeHTTP(writer, r)

			status := writer.Status()
			if status == 0 {
				status = http.StatusOK
			}

			labels := []string{
				"endpoint", r.URL.Path,
				"method", r.Method,
				"status", strconv.Itoa(status),
			}
			m.RequestsTotal.With(labels...).Add(1)
			if status >= http.StatusBadRequest {
				m.RequestErrorsTotal.With(labels...).Add(1)
			}
			m.RequestDurationSeconds.With(labels...).Observe(time.Since(begin).Seconds())
		})
	}
}
