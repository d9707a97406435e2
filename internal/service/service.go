// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package service

type Service interface {
	ServiceReady() bool
}

// ServiceConfig is the configuration for the Services.
type ServiceConfig struct {
	// BotNamePrefix is the display-name prefix for created bots.
	BotNamePrefix string
	// JoinLeadMinutes is the default join lead when a request does not
	// specify one.
	JoinLeadMinutes int
}
