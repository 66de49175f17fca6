// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package service

// Service is implemented by every service so readiness can be checked
// uniformly at the readiness probe.
type Service interface {
	ServiceReady() bool
}

// ServiceConfig is the configuration for the services.
type ServiceConfig struct {
	// JoinLinkBaseURL is the public base URL used to build meeting join
	// links embedded in invitation emails.
	JoinLinkBaseURL string
}
