// Package channels provides the ChatChannel interface for chat
// platform integrations.
package channels

import (
	"context"
	"errors"
	"sync"

	"github.com/initio-ai/initio/plugin/chat_apps"
)

var (
	ErrNoChannelForPlatform = errors.New("no channel registered for platform")
	ErrInvalidPayload       = errors.New("invalid webhook payload")
)

// ChatChannel defines the interface a chat platform integration
// implements.
type ChatChannel interface {
	// Name returns the platform name.
	Name() chat_apps.Platform

	// ValidateWebhook verifies the incoming webhook request.
	ValidateWebhook(ctx context.Context, headers map[string]string, body []byte) error

	// ParseMessage parses the incoming webhook payload.
	ParseMessage(ctx context.Context, payload []byte) (*chat_apps.IncomingMessage, error)

	// SendMessage sends a message, with inline buttons when present.
	SendMessage(ctx context.Context, msg *chat_apps.OutgoingMessage) error

	// AckCallback acknowledges a button press so the platform stops the
	// loading indicator. Platforms without the concept no-op.
	AckCallback(ctx context.Context, callbackID string) error

	// Close closes any open connections and releases resources.
	Close() error
}

// ChannelRouter routes webhook payloads to the registered channel.
// Concurrent-safe for Register and GetChannel.
type ChannelRouter struct {
	mu       sync.RWMutex
	registry map[chat_apps.Platform]ChatChannel
}

func NewChannelRouter() *ChannelRouter {
	return &ChannelRouter{registry: make(map[chat_apps.Platform]ChatChannel)}
}

// Register registers a chat channel for a platform.
func (r *ChannelRouter) Register(channel ChatChannel) {
	r.mu.Lock()
	r.registry[channel.Name()] = channel
	r.mu.Unlock()
}

// GetChannel returns the channel for a platform, or nil if not registered.
func (r *ChannelRouter) GetChannel(platform chat_apps.Platform) ChatChannel {
	r.mu.RLock()
	ch := r.registry[platform]
	r.mu.RUnlock()
	return ch
}

// HandleWebhook validates and parses an incoming webhook request.
func (r *ChannelRouter) HandleWebhook(ctx context.Context, platform chat_apps.Platform, headers map[string]string, body []byte) (*chat_apps.IncomingMessage, error) {
	channel := r.GetChannel(platform)
	if channel == nil {
		return nil, ErrNoChannelForPlatform
	}
	if err := channel.ValidateWebhook(ctx, headers, body); err != nil {
		return nil, err
	}
	return channel.ParseMessage(ctx, body)
}

// Close closes all registered channels.
func (r *ChannelRouter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for _, channel := range r.registry {
		if err := channel.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
