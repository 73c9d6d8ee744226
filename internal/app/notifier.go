package app

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"booking_bot/internal/adapters/observability"
	"booking_bot/internal/domain"
	"booking_bot/internal/shared"
)

// Notifier builds the WhatsApp deep link and, in send mode, relays the message.
type Notifier struct {
	mode      string
	messenger domain.Messenger
}

// NewNotifier downgrades send mode to link mode when no messenger is configured.
func NewNotifier(mode string, m domain.Messenger) *Notifier {
	if mode == shared.NotifySend && m == nil {
		mode = shared.NotifyLink
	}
	return &Notifier{mode: mode, messenger: m}
}

func (n *Notifier) Enabled() bool { return n != nil && n.mode != shared.NotifyOff && n.mode != "" }

// DeepLink opens a WhatsApp chat with digits and message prefilled.
func DeepLink(digits, message string) string {
	link := "https://wa.me/" + digits
	if message == "" {
		return link
	}
	// wa.me wants %20, not '+', for spaces
	return link + "?text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
}

// Notify never returns an error: failures come back in the Notification.
func (n *Notifier) Notify(ctx context.Context, phone, message string) domain.Notification {
	if !n.Enabled() {
		return domain.Notification{Reason: "notifications disabled"}
	}
	digits, ok := domain.NormalizePhone(phone)
	if !ok {
		observability.ObserveNotification("skipped")
		return domain.Notification{Reason: "no dialable phone number"}
	}

	out := domain.Notification{Link: DeepLink(digits, message)}
	if n.mode != shared.NotifySend {
		observability.ObserveNotification("link")
		return out
	}

	out.Attempted = true
	id, err := n.messenger.Send(ctx, digits, message)
	out.MessageID = id
	if err != nil {
		out.Reason = err.Error()
		observability.ObserveNotification("failed")
		zerolog.Ctx(ctx).Warn().Err(err).Str("to", digits).Msg("venue notification failed")
		return out
	}
	out.Delivered = true
	observability.ObserveNotification("delivered")
	zerolog.Ctx(ctx).Info().Str("to", digits).Str("message_id", id).Msg("venue notified")
	return out
}
