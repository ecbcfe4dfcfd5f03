// Package chat_apps provides chat platform integration for the
// scheduling dialog. Telegram is the primary transport; the types stay
// platform-neutral so other channels can plug in behind the same
// interface.
package chat_apps

import "time"

// Platform represents a supported chat platform.
type Platform string

const (
	PlatformTelegram Platform = "telegram"
	PlatformWeb      Platform = "web"
)

// IsValid checks if the platform is valid.
func (p Platform) IsValid() bool {
	switch p {
	case PlatformTelegram, PlatformWeb:
		return true
	default:
		return false
	}
}

// IncomingMessage represents a user action from a chat platform:
// either free text or an inline-button press carrying callback data.
type IncomingMessage struct {
	Platform       Platform
	PlatformUserID string
	PlatformChatID string
	Content        string // text content, empty for pure button presses
	CallbackData   string // inline-button payload, empty for text messages
	CallbackID     string // platform ack handle for button presses
	Timestamp      time.Time
}

// Button is one inline-keyboard button.
type Button struct {
	Text string
	Data string
}

// OutgoingMessage represents a reply to send back to the platform.
type OutgoingMessage struct {
	PlatformChatID string
	Content        string
	Buttons        []Button
}
