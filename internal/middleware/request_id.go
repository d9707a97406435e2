// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package middleware

import (
	"context"
	"crypto/rand"
	"log/slog"
	"net/http"

	"github.com/akamensky/base58"

	"github.com/notewell/notetaker-service/internal/logging"
	"github.com/notewell/notetaker-service/pkg/constants"
)

// RequestIDMiddleware creates a middleware that ensures every request
// carries a request ID. An inbound X-REQUEST-ID header is honored;
// otherwise a new base58-encoded ID is generated. The ID is stored in
// the request context and echoed on the response.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(constants.RequestIDHeader)
			if requestID == "" {
				requestID = generateRequestID()
			}

			ctx := context.WithValue(r.Context(), constants.RequestIDContextID, requestID)
			ctx = logging.AppendCtx(ctx, slog.String("request_id", requestID))

			w.Header().Set(constants.RequestIDHeader, requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// generateRequestID returns a short random base58 token.
func generateRequestID() string {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "unknown"
	}
	return base58.Encode(buf)
}
