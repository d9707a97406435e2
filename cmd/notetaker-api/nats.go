// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/notewell/notetaker-service/internal/domain"
	"github.com/notewell/notetaker-service/internal/domain/models"
	"github.com/notewell/notetaker-service/internal/infrastructure/messaging"
	"github.com/notewell/notetaker-service/internal/infrastructure/store"
	"github.com/notewell/notetaker-service/internal/logging"
	"github.com/notewell/notetaker-service/pkg/concurrent"
)

// natsDrainTimeout bounds how long a graceful shutdown waits for
// in-flight messages to finish.
const natsDrainTimeout = 25 * time.Second

// setupNATS establishes the NATS connection used for both messaging and
// the JetStream KV stores.
func setupNATS(_ context.Context, env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	gracefulCloseWG.Add(1)

	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.DrainTimeout(natsDrainTimeout),
		nats.ConnectHandler(func(_ *nats.Conn) {
			slog.With("nats_url", env.NatsURL).Info("NATS connection established")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, s *nats.Subscription, err error) {
			if s != nil {
				slog.With(logging.ErrKey, err, "subject", s.Subject, "queue", s.Queue).Error("async NATS error")
				return
			}
			slog.With(logging.ErrKey, err).Error("async NATS error")
		}),
		nats.ClosedHandler(func(conn *nats.Conn) {
			slog.With("last_error", conn.LastError()).Info("NATS connection closed")
			gracefulCloseWG.Done()
			// An unexpected close takes the whole process down so the
			// orchestrator restarts it with a fresh connection.
			select {
			case done <- os.Interrupt:
			default:
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	return natsConn, nil
}

// repositories holds the KV-backed storage implementations.
type repositories struct {
	Meeting       domain.MeetingRepository
	RecordingJob  domain.RecordingJobRepository
	Transcript    domain.TranscriptRepository
	RawTranscript domain.RawTranscriptArchive
}

// getKeyValueStores binds (creating if needed) the JetStream KV buckets
// and wraps them in the repository implementations. The buckets are
// independent, so they are set up concurrently.
func getKeyValueStores(ctx context.Context, natsConn *nats.Conn) (*repositories, error) {
	js, err := jetstream.New(natsConn)
	if err != nil {
		return nil, err
	}

	buckets := []string{
		store.KVStoreNameMeetings,
		store.KVStoreNameRecordingJobs,
		store.KVStoreNameTranscripts,
		store.KVStoreNameRawTranscripts,
	}

	var mu sync.Mutex
	kvStores := make(map[string]jetstream.KeyValue, len(buckets))

	pool := concurrent.NewWorkerPool(len(buckets))
	functions := make([]func() error, 0, len(buckets))
	for _, bucket := range buckets {
		functions = append(functions, func() error {
			kv, err := bindKeyValueBucket(ctx, js, bucket)
			if err != nil {
				return err
			}
			mu.Lock()
			kvStores[bucket] = kv
			mu.Unlock()
			return nil
		})
	}

	if err := pool.Run(ctx, functions...); err != nil {
		return nil, err
	}

	return &repositories{
		Meeting:       store.NewNatsMeetingRepository(kvStores[store.KVStoreNameMeetings]),
		RecordingJob:  store.NewNatsRecordingJobRepository(kvStores[store.KVStoreNameRecordingJobs]),
		Transcript:    store.NewNatsTranscriptRepository(kvStores[store.KVStoreNameTranscripts]),
		RawTranscript: store.NewNatsRawTranscriptArchive(kvStores[store.KVStoreNameRawTranscripts]),
	}, nil
}

func bindKeyValueBucket(ctx context.Context, js jetstream.JetStream, bucket string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, bucket)
	if err == nil {
		return kv, nil
	}
	if !errors.Is(err, jetstream.ErrBucketNotFound) {
		return nil, err
	}

	slog.With("bucket", bucket).Info("creating NATS KV bucket")
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: bucket,
	})
}

// createNatsSubscriptions creates the queue subscriptions for every
// subject the notetaker service handles.
func createNatsSubscriptions(ctx context.Context, handler domain.MessageHandler, natsConn *nats.Conn) error {
	subjects := []string{
		models.MeetingSyncedSubject,
		models.MeetingRemovedSubject,
		models.EnsureNotetakerSubject,
		models.RemoveNotetakerSubject,
		models.GetTranscriptSubject,
		models.CheckMeetingSubject,
		models.ForcePollSubject,
		models.PollerStatusSubject,
	}

	for _, subject := range subjects {
		if _, err := natsConn.QueueSubscribe(subject, models.NotetakerAPIQueue, func(msg *nats.Msg) {
			handler.HandleMessage(ctx, messaging.NewNatsMessage(msg))
		}); err != nil {
			return err
		}
		slog.With("subject", subject, "queue", models.NotetakerAPIQueue).Debug("subscribed to NATS subject")
	}

	return nil
}
