// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package constants

// Notetaker scheduling constraints
const (
	// DefaultJoinLeadMinutes is how many minutes before the meeting start
	// the bot is asked to join when the caller does not say otherwise.
	DefaultJoinLeadMinutes = 2

	// MaxJoinLeadMinutes caps how early a bot may be asked to join.
	MaxJoinLeadMinutes = 15
)
