package server

import (
	"net"
	"sync"
)

// ListenFunc opens the network listener. net.Listen by default.
type ListenFunc func(network, address string) (net.Listener, error)

// onceListener closes the wrapped listener at most once, whoever asks first.
// fiber closes it during shutdown and the lifecycle closes it again
// unconditionally; only the first call reaches the socket.
type onceListener struct {
	net.Listener
	once sync.Once
	err  error
}

func (l *onceListener) Close() error {
	l.once.Do(func() {
		l.err = l.Listener.Close()
	})
	return l.err
}
