package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/vlehub/user-service/internal/pkg/reqctx"
)

const HeaderXRequestID = "X-Request-Id"

// RequestID propagates (or mints) a request id and exposes it on the
// response and the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderXRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		w.Header().Set(HeaderXRequestID, reqID)
		ctx := reqctx.WithRequestID(r.Context(), reqID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
