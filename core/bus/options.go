package bus

import (
	"context"
	"log/slog"
)

// StopMode controls what happens to queued messages once Stop is observed.
type StopMode int

const (
	// StopDrain delivers every message sent before Stop was called, then
	// exits. Messages sent afterwards are discarded.
	StopDrain StopMode = iota
	// StopImmediate exits at the next cycle boundary, leaving queued
	// messages undelivered.
	StopImmediate
)

func (m StopMode) String() string {
	switch m {
	case StopDrain:
		return "drain"
	case StopImmediate:
		return "immediate"
	default:
		return "unknown"
	}
}

// Codec decodes encoded messages for Bus.SendEncoded.
type Codec interface {
	Unmarshal(data []byte, v any) error
}

type Options struct {
	// Name labels logs and metrics. A random name is generated when empty.
	Name string
	// Context cancellation acts like Stop. Actors receive it in OnReceive.
	Context  context.Context
	Logger   *slog.Logger
	Metrics  Metrics
	StopMode StopMode
	// Codec is used by SendEncoded. Defaults to JSON.
	Codec Codec
}
