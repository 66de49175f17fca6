// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

// Package main is the meeting agent service API that provides a RESTful API
// for managing meetings and agents and handles NATS messages for the
// meeting lifecycle events.
package main

import (
	"context"
	_ "expvar"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
	"github.com/agentmeet/meeting-agent-service/internal/handlers"
	"github.com/agentmeet/meeting-agent-service/internal/infrastructure/ai"
	"github.com/agentmeet/meeting-agent-service/internal/infrastructure/billing"
	"github.com/agentmeet/meeting-agent-service/internal/infrastructure/callprovider"
	"github.com/agentmeet/meeting-agent-service/internal/infrastructure/chat"
	"github.com/agentmeet/meeting-agent-service/internal/infrastructure/messaging"
	"github.com/agentmeet/meeting-agent-service/internal/infrastructure/realtime"
	"github.com/agentmeet/meeting-agent-service/internal/infrastructure/transcript"
	"github.com/agentmeet/meeting-agent-service/internal/infrastructure/webhook"
	"github.com/agentmeet/meeting-agent-service/internal/logging"
	"github.com/agentmeet/meeting-agent-service/internal/service"
)

func main() {
	env := parseEnv()
	flags := parseFlags(env.Port)

	logging.InitStructureLogConfig()

	// Set up JWT validator used by the authorization middleware.
	jwtAuth, err := setupJWTAuth()
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up JWT authentication")
		os.Exit(1)
	}

	// Initialize email service (independent of NATS)
	emailService, err := setupEmailService(env)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up email service")
		return
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	// Setup NATS connection
	natsConn, err := setupNATS(env, &gracefulCloseWG, done)
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

	// Initialize external provider clients
	callProvider := callprovider.NewClient(callprovider.Config{
		ClientID:     env.CallProvider.ClientID,
		ClientSecret: env.CallProvider.ClientSecret,
		BaseURL:      env.CallProvider.BaseURL,
		AuthURL:      env.CallProvider.AuthURL,
	})
	realtimeProvider := realtime.NewProvider(realtime.Config{
		APIKey:  env.Realtime.APIKey,
		BaseURL: env.Realtime.BaseURL,
		Model:   env.Realtime.Model,
	})
	completionsClient := ai.NewClient(ai.Config{
		APIKey:  env.Completions.APIKey,
		BaseURL: env.Completions.BaseURL,
		Model:   env.Completions.Model,
	})
	chatClient := chat.NewClient(chat.Config{
		APIKey:  env.Chat.APIKey,
		BaseURL: env.Chat.BaseURL,
	})
	transcriptFetcher := transcript.NewFetcher(30 * time.Second)
	webhookValidator := webhook.NewValidator(env.Webhook.APIKey, env.Webhook.APISecret)
	subscriptionChecker := setupSubscriptionChecker(env)

	// Initialize services
	serviceConfig := service.ServiceConfig{
		JoinLinkBaseURL: env.JoinLinkBaseURL,
	}
	messageBuilder := messaging.NewMessageBuilder(natsConn)
	meetingService := service.NewMeetingService(
		repos.Meeting,
		repos.Agent,
		callProvider,
		transcriptFetcher,
		serviceConfig,
	)
	agentService := service.NewAgentService(repos.Agent, callProvider)
	connectionService := service.NewAgentConnectionService(
		repos.Meeting,
		repos.Agent,
		callProvider,
		realtimeProvider,
	)
	accessService := service.NewAccessService(
		repos.Meeting,
		repos.Participant,
		repos.Invitation,
		callProvider,
		emailService,
		connectionService,
		serviceConfig,
	)
	usageService := service.NewUsageService(repos.Meeting, repos.Agent, subscriptionChecker)
	webhookService := service.NewWebhookService(
		repos.Meeting,
		messageBuilder,
		webhookValidator,
	)
	eventService := service.NewMeetingEventService(
		repos.Meeting,
		repos.Agent,
		repos.Participant,
		callProvider,
		connectionService,
		messageBuilder,
		chatClient,
		completionsClient,
	)
	summarizerService := service.NewSummarizerService(
		repos.Meeting,
		repos.Agent,
		transcriptFetcher,
		completionsClient,
	)

	// Settle agent state left behind by a previous instance before taking
	// traffic, so usage accounting never counts a dead session as live.
	if err := connectionService.Reconcile(ctx); err != nil {
		slog.With(logging.ErrKey, err).Warn("error reconciling agent connections on startup")
	}

	// Initialize handlers
	webhookEventHandler := handlers.NewWebhookEventHandler(
		eventService,
		summarizerService,
	)

	api := NewMeetingAgentAPI(
		meetingService,
		agentService,
		connectionService,
		accessService,
		usageService,
		webhookService,
	)

	httpServer := setupHTTPServer(flags, api, jwtAuth, &gracefulCloseWG)

	// Create NATS subscriptions for the service.
	err = createNatsSubscriptions(ctx, webhookEventHandler, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error creating NATS subscriptions")
		return
	}

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, &gracefulCloseWG, cancel)
}

// setupSubscriptionChecker selects the billing backend. Without an API key
// configured the premium set comes from a static list, which keeps local
// development off the billing provider.
func setupSubscriptionChecker(env environment) domain.SubscriptionChecker {
	if env.Billing.APIKey != "" {
		return billing.NewClient(billing.Config{
			APIKey:  env.Billing.APIKey,
			BaseURL: env.Billing.BaseURL,
		})
	}

	var premiumUsers []string
	for _, uid := range strings.Split(env.Billing.PremiumUsers, ",") {
		if uid = strings.TrimSpace(uid); uid != "" {
			premiumUsers = append(premiumUsers, uid)
		}
	}
	slog.With("premium_users", len(premiumUsers)).Info("BILLING_API_KEY not set, using static premium list")
	return billing.NewStaticChecker(premiumUsers)
}
