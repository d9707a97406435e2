// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/notewell/notetaker-service/internal/logging"
	"github.com/notewell/notetaker-service/internal/service"
)

// flags are the command line flags for the notetaker service.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the notetaker service.
type environment struct {
	Port            string
	NatsURL         string
	PollInterval    time.Duration
	BotNamePrefix   string
	JoinLeadMinutes int
	Recorder        recorderConfig
}

// recorderConfig holds the recording provider API configuration.
type recorderConfig struct {
	BaseURL      string
	AuthURL      string
	ClientID     string
	ClientSecret string
}

// parseFlags parses command line flags for the notetaker service
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the notetaker service
func parseEnv() environment {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://notewell-nats.notewell.svc.cluster.local:4222"
	}

	pollInterval := service.DefaultPollInterval
	if raw := os.Getenv("POLL_INTERVAL_SECONDS"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			pollInterval = time.Duration(seconds) * time.Second
		} else {
			slog.With("value", raw).Warn("invalid POLL_INTERVAL_SECONDS, using default")
		}
	}

	joinLeadMinutes := 0
	if raw := os.Getenv("JOIN_LEAD_MINUTES"); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			joinLeadMinutes = minutes
		} else {
			slog.With("value", raw).Warn("invalid JOIN_LEAD_MINUTES, using default")
		}
	}

	return environment{
		Port:            port,
		NatsURL:         natsURL,
		PollInterval:    pollInterval,
		BotNamePrefix:   os.Getenv("BOT_NAME_PREFIX"),
		JoinLeadMinutes: joinLeadMinutes,
		Recorder:        parseRecorderConfig(),
	}
}

// parseRecorderConfig parses the recording provider configuration from
// environment variables
func parseRecorderConfig() recorderConfig {
	baseURL := os.Getenv("RECORDER_BASE_URL")
	if baseURL == "" {
		slog.Error("RECORDER_BASE_URL environment variable is required but not set")
		os.Exit(1)
	}

	return recorderConfig{
		BaseURL:      baseURL,
		AuthURL:      os.Getenv("RECORDER_AUTH_URL"),
		ClientID:     os.Getenv("RECORDER_CLIENT_ID"),
		ClientSecret: os.Getenv("RECORDER_CLIENT_SECRET"),
	}
}
