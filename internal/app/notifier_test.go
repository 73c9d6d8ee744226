package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"booking_bot/internal/app"
	"booking_bot/internal/shared"
)

func TestDeepLink(t *testing.T) {
	got := app.DeepLink("77273550055", "Столик на 4, 19:00")
	want := "https://wa.me/77273550055?text=%D0%A1%D1%82%D0%BE%D0%BB%D0%B8%D0%BA%20%D0%BD%D0%B0%204%2C%2019%3A00"
	if got != want {
		t.Fatalf("DeepLink:\n got %s\nwant %s", got, want)
	}
	if app.DeepLink("123", "") != "https://wa.me/123" {
		t.Fatalf("expected bare link without text")
	}
}

func TestNotifier_LinkMode(t *testing.T) {
	m := &fakeMessenger{}
	n := app.NewNotifier(shared.NotifyLink, m)

	got := n.Notify(context.Background(), "+7 (727) 355-00-55", "hi")
	if got.Attempted || got.Delivered || !strings.HasPrefix(got.Link, "https://wa.me/77273550055") {
		t.Fatalf("unexpected notification: %+v", got)
	}
	if m.calls != 0 {
		t.Fatalf("link mode must not send")
	}
}

func TestNotifier_SendMode(t *testing.T) {
	m := &fakeMessenger{id: "SM1"}
	n := app.NewNotifier(shared.NotifySend, m)

	got := n.Notify(context.Background(), "+7 (727) 355-00-55", "hi")
	if !got.Attempted || !got.Delivered || got.MessageID != "SM1" {
		t.Fatalf("unexpected notification: %+v", got)
	}
	if m.calls != 1 || m.to != "77273550055" || m.body != "hi" {
		t.Fatalf("unexpected send: %+v", m)
	}
}

func TestNotifier_SendFailureIsReported(t *testing.T) {
	m := &fakeMessenger{err: errors.New("channel not found")}
	n := app.NewNotifier(shared.NotifySend, m)

	got := n.Notify(context.Background(), "77273550055", "hi")
	if !got.Attempted || got.Delivered || got.Reason != "channel not found" || got.Link == "" {
		t.Fatalf("unexpected notification: %+v", got)
	}
}

func TestNotifier_NoDialablePhone(t *testing.T) {
	m := &fakeMessenger{}
	n := app.NewNotifier(shared.NotifySend, m)

	for _, phone := range []string{"", "уточняйте", "12"} {
		got := n.Notify(context.Background(), phone, "hi")
		if got.Attempted || got.Link != "" {
			t.Fatalf("phone %q: unexpected notification %+v", phone, got)
		}
	}
	if m.calls != 0 {
		t.Fatalf("expected no sends, got %d", m.calls)
	}
}

func TestNotifier_SendWithoutMessengerFallsBackToLink(t *testing.T) {
	n := app.NewNotifier(shared.NotifySend, nil)
	got := n.Notify(context.Background(), "77273550055", "hi")
	if got.Attempted || got.Link == "" {
		t.Fatalf("unexpected notification: %+v", got)
	}
}

func TestNotifier_Off(t *testing.T) {
	n := app.NewNotifier(shared.NotifyOff, &fakeMessenger{})
	if n.Enabled() {
		t.Fatalf("expected disabled notifier")
	}
	if got := n.Notify(context.Background(), "77273550055", "hi"); got.Link != "" || got.Attempted {
		t.Fatalf("unexpected notification: %+v", got)
	}
}
