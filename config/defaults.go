package config

import "time"

// Default values used when a configuration file omits them.
const (
	// DefaultConfigPath is where `delegator serve` looks for its config
	// file when none is given on the command line.
	DefaultConfigPath = "delegator.hcl"
	// DefaultUserAgent is the outbound User-Agent sent by the live
	// invoker when http.client.user_agent is unset.
	DefaultUserAgent = "delegator/1.0"
	// DefaultTimeout is the outbound request timeout when
	// http.client.default_timeout is unset.
	DefaultTimeout = 30 * time.Second
)
