// Package fahlink mirrors the live state of a remote Folding@home client
// over its WebSocket feed and relays control commands back to it.
//
// This root package re-exports the embeddable API from pkg/fahlink for
// convenient import:
//
//	client, err := fahlink.New(fahlink.Config{Host: "192.168.1.20"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := client.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Stop()
package fahlink

import (
	"context"

	api "github.com/fold-labs/fahlink/pkg/fahlink"
)

// Client mirrors one remote folding client and relays commands to it.
type Client = api.Client

// Config holds the configuration for a Client.
type Config = api.Config

// Option configures optional behavior of a Client.
type Option = api.Option

// Value is an immutable node of the mirrored client document.
type Value = api.Value

// Machine is the remote client's identity.
type Machine = api.Machine

// Command is a one-shot outbound request to the remote client.
type Command = api.Command

// New creates a new Client. See pkg/fahlink for options.
func New(cfg Config, opts ...Option) (*Client, error) {
	return api.New(cfg, opts...)
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return api.DefaultConfig()
}

// Probe validates that a folding client is reachable and returns its
// machine identity.
func Probe(ctx context.Context, cfg Config, opts ...Option) (Machine, error) {
	return api.Probe(ctx, cfg, opts...)
}
