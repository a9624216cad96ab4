package bus

import "errors"

// Ошибки шины событий и каналов доставки
var (
	// ErrChannelClosed indicates that the delivery channel is already torn down
	ErrChannelClosed = errors.New("delivery channel closed")

	// ErrChannelFull indicates that the channel send buffer overflowed (slow consumer)
	ErrChannelFull = errors.New("delivery channel send buffer full")

	// ErrBusClosed indicates that the event bus is shut down
	ErrBusClosed = errors.New("event bus closed")

	// ErrEmitOverflow indicates that the emit queue overflowed and the event was dropped
	ErrEmitOverflow = errors.New("emit queue overflow, event dropped")
)
