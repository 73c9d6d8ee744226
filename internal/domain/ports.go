package domain

import "context"

// Completer is a text-in/text-out LLM completion service.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// PlacesClient searches the maps provider; features come back undecoded.
type PlacesClient interface {
	Search(ctx context.Context, text string) ([]map[string]any, error)
}

// Messenger delivers a text message and returns the provider's message id.
type Messenger interface {
	Send(ctx context.Context, to, body string) (string, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type MissLog interface {
	LogMiss(ctx context.Context, query, reason string) error
	TopMisses(ctx context.Context, limit int) ([]Miss, error)
}
