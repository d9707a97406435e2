// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

// Package main is the notetaker service API that reconciles recording
// bots against meetings and handles NATS messages for the notetaker
// service.
package main

import (
	"context"
	_ "expvar"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/notewell/notetaker-service/internal/handlers"
	"github.com/notewell/notetaker-service/internal/infrastructure/messaging"
	"github.com/notewell/notetaker-service/internal/infrastructure/platform"
	recorderapi "github.com/notewell/notetaker-service/internal/infrastructure/recorder/api"
	"github.com/notewell/notetaker-service/internal/logging"
	"github.com/notewell/notetaker-service/internal/service"
	"github.com/notewell/notetaker-service/pkg/utils"
)

const shutdownTimeout = 25 * time.Second

func main() {
	env := parseEnv()
	flags := parseFlags(env.Port)

	logging.InitStructureLogConfig()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	otelShutdown, err := utils.SetupOTelSDK(ctx)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up OpenTelemetry SDK")
		os.Exit(1)
	}

	// Initialize platform providers
	platformRegistry := platform.NewDefaultRegistry()

	// Initialize the recording provider client (independent of NATS)
	recorderClient := recorderapi.NewClient(recorderapi.Config{
		BaseURL:      env.Recorder.BaseURL,
		AuthURL:      env.Recorder.AuthURL,
		ClientID:     env.Recorder.ClientID,
		ClientSecret: env.Recorder.ClientSecret,
	})

	// Setup NATS connection
	natsConn, err := setupNATS(ctx, env, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up NATS")
		return
	}

	// Get the key-value stores for the service.
	repos, err := getKeyValueStores(ctx, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error getting key-value stores")
		return
	}

	// Initialize services
	serviceConfig := service.ServiceConfig{
		BotNamePrefix:   env.BotNamePrefix,
		JoinLeadMinutes: env.JoinLeadMinutes,
	}
	messageBuilder := messaging.NewMessageBuilder(natsConn)
	scheduleService := service.NewScheduleService()
	meetingService := service.NewMeetingService(
		repos.Meeting,
		repos.RecordingJob,
		messageBuilder,
		platformRegistry,
		serviceConfig,
	)
	notetakerService := service.NewNotetakerService(
		repos.Meeting,
		repos.RecordingJob,
		recorderClient,
		platformRegistry,
		scheduleService,
		serviceConfig,
	)
	readinessService := service.NewReadinessService(recorderClient)
	transcriptService := service.NewTranscriptService(
		repos.Transcript,
		repos.RawTranscript,
		messageBuilder,
	)
	pollerService := service.NewPollerService(
		repos.Meeting,
		repos.RecordingJob,
		recorderClient,
		readinessService,
		transcriptService,
		env.PollInterval,
	)

	// Initialize handlers
	notetakerHandler := handlers.NewNotetakerHandler(
		meetingService,
		notetakerService,
		transcriptService,
		pollerService,
	)

	httpServer := setupHTTPServer(flags, notetakerHandler, pollerService, &gracefulCloseWG)

	// Create NATS subscriptions for the service.
	err = createNatsSubscriptions(ctx, notetakerHandler, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error creating NATS subscriptions")
		return
	}

	// Start the reconciliation poller.
	pollerService.Start(ctx)

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(pollerService, httpServer, natsConn, otelShutdown, &gracefulCloseWG, cancel)
}

func gracefulShutdown(
	pollerService *service.PollerService,
	httpServer *http.Server,
	natsConn *nats.Conn,
	otelShutdown func(context.Context) error,
	gracefulCloseWG *sync.WaitGroup,
	cancel context.CancelFunc,
) {
	slog.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	pollerService.Stop(shutdownCtx)

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.With(logging.ErrKey, err).Error("error shutting down http server")
	}
	// The http listener goroutine never decrements the wait group itself.
	gracefulCloseWG.Done()

	// Drain lets in-flight NATS handlers finish; the ClosedHandler
	// decrements the wait group once the connection is fully closed.
	if natsConn != nil && !natsConn.IsClosed() {
		if err := natsConn.Drain(); err != nil {
			slog.With(logging.ErrKey, err).Error("error draining NATS connection")
		}
	}

	cancel()

	waitDone := make(chan struct{})
	go func() {
		gracefulCloseWG.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-shutdownCtx.Done():
		slog.Warn("timed out waiting for graceful close")
	}

	if err := otelShutdown(context.Background()); err != nil {
		slog.With(logging.ErrKey, err).Error("error shutting down OpenTelemetry SDK")
	}
}
