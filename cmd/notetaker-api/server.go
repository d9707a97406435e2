// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/notewell/notetaker-service/internal/handlers"
	"github.com/notewell/notetaker-service/internal/logging"
	"github.com/notewell/notetaker-service/internal/middleware"
	"github.com/notewell/notetaker-service/internal/service"
)

// setupHTTPServer configures and starts the HTTP server: health probes
// plus a small operational surface for the poller.
func setupHTTPServer(flags flags, handler *handlers.NotetakerHandler, pollerService *service.PollerService, gracefulCloseWG *sync.WaitGroup) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /livez", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK\n"))
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		if !handler.HandlerReady() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("service not ready\n"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK\n"))
	})

	mux.HandleFunc("GET /poller/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, pollerService.Status())
	})

	mux.HandleFunc("POST /poller/tick", func(w http.ResponseWriter, r *http.Request) {
		summary, err := pollerService.ForceTick(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "forced poll failed", logging.ErrKey, err)
			writeJSON(w, r, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, r, http.StatusOK, summary)
	})

	var httpHandler http.Handler = mux

	// Add HTTP middleware
	// Note: Order matters - RequestIDMiddleware should come first in the chain,
	// so it should be the last middleware added to the handler since it is executed in reverse order.
	httpHandler = middleware.RequestLoggerMiddleware()(httpHandler)
	httpHandler = middleware.RequestIDMiddleware()(httpHandler)

	// Set up http listener in a goroutine using provided command line parameters.
	var addr string
	if flags.Bind == "*" {
		addr = ":" + flags.Port
	} else {
		addr = flags.Bind + ":" + flags.Port
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           httpHandler,
		ReadHeaderTimeout: 3 * time.Second,
	}
	gracefulCloseWG.Add(1)
	go func() {
		slog.With("addr", addr).Debug("starting http server, listening on port " + flags.Port)
		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			slog.With(logging.ErrKey, err).Error("http listener error")
			os.Exit(1)
		}
		// Because ErrServerClosed is *immediately* returned when Shutdown is
		// called, not when when Shutdown completes, this must not yet decrement
		// the wait group.
	}()

	return httpServer
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.ErrorContext(r.Context(), "error encoding response", logging.ErrKey, err)
	}
}
