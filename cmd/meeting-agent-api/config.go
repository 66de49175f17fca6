// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"os"
	"strconv"

	"github.com/agentmeet/meeting-agent-service/internal/logging"
)

// flags are the command line flags for the meeting agent service.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the meeting agent service.
type environment struct {
	Port            string
	NatsURL         string
	JoinLinkBaseURL string
	CallProvider    callProviderEnv
	Realtime        realtimeEnv
	Completions     completionsEnv
	Chat            chatEnv
	Billing         billingEnv
	Webhook         webhookEnv
	SMTP            smtpEnv
}

// callProviderEnv holds call provider API credentials.
type callProviderEnv struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	AuthURL      string
}

// realtimeEnv holds realtime session provider configuration.
type realtimeEnv struct {
	APIKey  string
	BaseURL string
	Model   string
}

// completionsEnv holds chat completion provider configuration.
type completionsEnv struct {
	APIKey  string
	BaseURL string
	Model   string
}

// chatEnv holds meeting chat provider configuration.
type chatEnv struct {
	APIKey  string
	BaseURL string
}

// billingEnv holds subscription checker configuration. When no API key is
// set the service falls back to a static premium list, which is the local
// development mode.
type billingEnv struct {
	APIKey       string
	BaseURL      string
	PremiumUsers string
}

// webhookEnv holds the shared secret pair used to authenticate inbound
// call provider webhooks.
type webhookEnv struct {
	APIKey    string
	APISecret string
}

// smtpEnv holds SMTP configuration for invitation emails. An empty host
// selects the no-op email service.
type smtpEnv struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// parseFlags parses command line flags for the meeting agent service
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

// parseEnv parses environment variables for the meeting agent service
func parseEnv() environment {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	joinLinkBaseURL := os.Getenv("JOIN_LINK_BASE_URL")
	if joinLinkBaseURL == "" {
		joinLinkBaseURL = "https://app.agentmeet.io/join"
	}

	smtpPort := 587
	if raw := os.Getenv("SMTP_PORT"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			slog.With(logging.ErrKey, err, "value", raw).Error("invalid SMTP_PORT provided, using default")
		} else {
			smtpPort = parsed
		}
	}

	return environment{
		Port:            port,
		NatsURL:         natsURL,
		JoinLinkBaseURL: joinLinkBaseURL,
		CallProvider: callProviderEnv{
			ClientID:     os.Getenv("CALL_PROVIDER_CLIENT_ID"),
			ClientSecret: os.Getenv("CALL_PROVIDER_CLIENT_SECRET"),
			BaseURL:      os.Getenv("CALL_PROVIDER_BASE_URL"),
			AuthURL:      os.Getenv("CALL_PROVIDER_AUTH_URL"),
		},
		Realtime: realtimeEnv{
			APIKey:  os.Getenv("REALTIME_API_KEY"),
			BaseURL: os.Getenv("REALTIME_BASE_URL"),
			Model:   os.Getenv("REALTIME_MODEL"),
		},
		Completions: completionsEnv{
			APIKey:  os.Getenv("COMPLETIONS_API_KEY"),
			BaseURL: os.Getenv("COMPLETIONS_BASE_URL"),
			Model:   os.Getenv("COMPLETIONS_MODEL"),
		},
		Chat: chatEnv{
			APIKey:  os.Getenv("CHAT_API_KEY"),
			BaseURL: os.Getenv("CHAT_BASE_URL"),
		},
		Billing: billingEnv{
			APIKey:       os.Getenv("BILLING_API_KEY"),
			BaseURL:      os.Getenv("BILLING_BASE_URL"),
			PremiumUsers: os.Getenv("BILLING_PREMIUM_USERS"),
		},
		Webhook: webhookEnv{
			APIKey:    os.Getenv("WEBHOOK_API_KEY"),
			APISecret: os.Getenv("WEBHOOK_API_SECRET"),
		},
		SMTP: smtpEnv{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     smtpPort,
			From:     os.Getenv("SMTP_FROM"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
		},
	}
}
