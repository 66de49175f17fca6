// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
	"github.com/agentmeet/meeting-agent-service/internal/domain/models"
	"github.com/agentmeet/meeting-agent-service/internal/handlers"
	"github.com/agentmeet/meeting-agent-service/internal/infrastructure/auth"
	"github.com/agentmeet/meeting-agent-service/internal/infrastructure/email"
	"github.com/agentmeet/meeting-agent-service/internal/infrastructure/messaging"
	"github.com/agentmeet/meeting-agent-service/internal/infrastructure/store"
	"github.com/agentmeet/meeting-agent-service/internal/logging"
)

const (
	natsConnectTimeout  = 10 * time.Second
	natsDrainTimeout    = 25 * time.Second
	natsReconnectWait   = 2 * time.Second
	httpShutdownTimeout = 25 * time.Second
)

// setupJWTAuth configures JWT authentication for the service
func setupJWTAuth() (*auth.JWTAuth, error) {
	jwtAuthConfig := auth.JWTAuthConfig{
		JWKSURL:            os.Getenv("JWKS_URL"),
		Audience:           os.Getenv("JWT_AUDIENCE"),
		MockLocalPrincipal: os.Getenv("JWT_AUTH_DISABLED_MOCK_LOCAL_PRINCIPAL"),
	}
	return auth.NewJWTAuth(jwtAuthConfig)
}

// setupEmailService selects the invitation email backend. Without an SMTP
// host configured, invitations are created but no mail leaves the process.
func setupEmailService(env environment) (domain.EmailService, error) {
	if env.SMTP.Host == "" {
		slog.Info("SMTP_HOST not set, invitation emails disabled")
		return email.NewNoOpService(), nil
	}
	return email.NewSMTPService(email.SMTPConfig{
		Host:     env.SMTP.Host,
		Port:     env.SMTP.Port,
		From:     env.SMTP.From,
		Username: env.SMTP.Username,
		Password: env.SMTP.Password,
	})
}

// setupNATS connects to the NATS server. The connection drains on shutdown;
// an unrecoverable connection loss stops the process via the done channel.
func setupNATS(env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	gracefulCloseWG.Add(1)
	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.Timeout(natsConnectTimeout),
		nats.DrainTimeout(natsDrainTimeout),
		nats.ReconnectWait(natsReconnectWait),
		nats.MaxReconnects(-1),
		nats.ConnectHandler(func(nc *nats.Conn) {
			slog.With("nats_url", nc.ConnectedUrl()).Info("connected to NATS server")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			if sub != nil {
				slog.With(logging.ErrKey, err, "subject", sub.Subject).Error("NATS subscription error")
				return
			}
			slog.With(logging.ErrKey, err).Error("NATS error")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			if err := nc.LastError(); err != nil {
				slog.With(logging.ErrKey, err).Error("NATS connection closed with error")
			}
			gracefulCloseWG.Done()
			// Wake the main goroutine if the connection closed on its own.
			select {
			case done <- os.Interrupt:
			default:
			}
		}),
	)
	if err != nil {
		gracefulCloseWG.Done()
		return nil, fmt.Errorf("connecting to NATS at %s: %w", env.NatsURL, err)
	}
	return natsConn, nil
}

// repositories bundles the NATS KV backed stores the services read and write.
type repositories struct {
	Meeting     *store.NatsMeetingRepository
	Agent       *store.NatsAgentRepository
	Participant *store.NatsParticipantRepository
	Invitation  *store.NatsInvitationRepository
}

// getKeyValueStores opens (or creates) the KV buckets for the service.
func getKeyValueStores(ctx context.Context, natsConn *nats.Conn) (*repositories, error) {
	js, err := jetstream.New(natsConn)
	if err != nil {
		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	buckets := make(map[string]jetstream.KeyValue)
	for _, name := range []string{
		store.KVStoreNameMeetings,
		store.KVStoreNameAgents,
		store.KVStoreNameParticipants,
		store.KVStoreNameInvitations,
	} {
		kv, err := js.KeyValue(ctx, name)
		if errors.Is(err, jetstream.ErrBucketNotFound) {
			kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: name})
		}
		if err != nil {
			return nil, fmt.Errorf("getting KV bucket %s: %w", name, err)
		}
		buckets[name] = kv
	}

	return &repositories{
		Meeting:     store.NewNatsMeetingRepository(buckets[store.KVStoreNameMeetings]),
		Agent:       store.NewNatsAgentRepository(buckets[store.KVStoreNameAgents]),
		Participant: store.NewNatsParticipantRepository(buckets[store.KVStoreNameParticipants]),
		Invitation:  store.NewNatsInvitationRepository(buckets[store.KVStoreNameInvitations]),
	}, nil
}

// createNatsSubscriptions subscribes the webhook event handler to the
// service's queue subjects. The queue group ensures each message is handled
// by exactly one instance.
func createNatsSubscriptions(ctx context.Context, handler *handlers.WebhookEventHandler, natsConn *nats.Conn) error {
	subjects := []string{
		models.WebhookSessionStartedSubject,
		models.WebhookParticipantLeftSubject,
		models.WebhookSessionEndedSubject,
		models.WebhookTranscriptionReadySubject,
		models.WebhookRecordingReadySubject,
		models.WebhookChatMessageSubject,
		models.MeetingSummarizeSubject,
	}
	for _, subject := range subjects {
		_, err := natsConn.QueueSubscribe(subject, models.MeetingServiceQueue, func(msg *nats.Msg) {
			handler.HandleMessage(ctx, messaging.NewNatsMessage(msg))
		})
		if err != nil {
			return fmt.Errorf("subscribing to %s: %w", subject, err)
		}
		slog.With("subject", subject, "queue", models.MeetingServiceQueue).Debug("subscribed to NATS subject")
	}
	return nil
}

// gracefulShutdown stops the HTTP listener, drains the NATS connection, and
// waits for in-flight work to finish.
func gracefulShutdown(httpServer *http.Server, natsConn *nats.Conn, gracefulCloseWG *sync.WaitGroup, cancel context.CancelFunc) {
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.With(logging.ErrKey, err).Error("error shutting down http server")
	}
	gracefulCloseWG.Done()

	if natsConn != nil && !natsConn.IsClosed() {
		if err := natsConn.Drain(); err != nil {
			slog.With(logging.ErrKey, err).Error("error draining NATS connection")
		}
	}

	cancel()
	gracefulCloseWG.Wait()
	slog.Info("shutdown complete")
}
