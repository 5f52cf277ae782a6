package web

import "context"

// Server is anything the simulator can start with a context and stop.
type Server interface {
	Start(ctx context.Context) error
	Stop() error
}

type NoopServer struct{}

func (n *NoopServer) Start(ctx context.Context) error { return nil }
func (n *NoopServer) Stop() error                     { return nil }

var _ Server = (*HTTPServer)(nil)
