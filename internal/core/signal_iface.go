package core

// Frame is an encoded outbound event, ready to be written to the socket.
type Frame []byte

// SignalConnection abstracts the socket transport of one connection.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend queues a frame without blocking. A full queue is an error.
	TrySend(Frame) error
	Close()
}
