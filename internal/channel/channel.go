// Package channel provides generic channel interfaces so producers and
// consumers of session events stay decoupled from buffering policy.
package channel

// Receiver provides read access to a channel.
type Receiver[T any] interface {
	Receive() <-chan T
	Len() int
}

// Sender provides write access to a channel.
type Sender[T any] interface {
	Send(T)
	// TrySend sends without blocking; reports whether the value was
	// accepted. Session event emission uses this so a slow consumer can
	// never stall the tracking pipeline.
	TrySend(T) bool
}

// Channel combines read and write access.
type Channel[T any] interface {
	Receiver[T]
	Sender[T]
	Close()
}
