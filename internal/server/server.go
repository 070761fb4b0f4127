/*
author: akashmaji
email: akashmaji@iisc.ac.in
file: respkv/internal/server/server.go
*/

// Package server implements the connection driver (C6): accepting TCP
// connections, running each through the request/dispatch/reply loop, and
// supervising the set of in-flight connections.
package server

import (
	"context"
	"fmt"
	"net"

	"github.com/shirou/gopsutil/v4/mem"
	"golang.org/x/sync/errgroup"

	"github.com/akashmaji946/respkv/internal/command"
	"github.com/akashmaji946/respkv/internal/common"
	"github.com/akashmaji946/respkv/internal/store"
)

// Server owns the listener and the shared database; each accepted
// connection runs in its own goroutine under the supervising errgroup.
type Server struct {
	DB    *store.Database
	Log   *common.Logger
	specs *command.Node
	lst   net.Listener
}

// New builds a Server bound to db. The command spec tree is built once
// here and shared read-only by every connection.
func New(db *store.Database, log *common.Logger) *Server {
	return &Server{
		DB:    db,
		Log:   log,
		specs: command.NewSpecTree(),
	}
}

// logStartupBanner reports host memory once at boot, a single line an
// operator can use to sanity-check the box this server landed on.
func (s *Server) logStartupBanner(addr string) {
	if vm, err := mem.VirtualMemory(); err == nil {
		s.Log.Info("starting on %s (host memory: %d MiB total, %d MiB available)",
			addr, vm.Total/1024/1024, vm.Available/1024/1024)
	} else {
		s.Log.Info("starting on %s", addr)
	}
}

// ListenAndServe binds addr, logs the startup banner, and runs the
// accept loop until ctx is cancelled or the listener fails. Each
// connection is served in its own goroutine, supervised by an
// errgroup.Group so a connection's error never brings down the server.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	lst, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.lst = lst
	s.logStartupBanner(addr)

	go func() {
		<-ctx.Done()
		lst.Close()
	}()

	group, _ := errgroup.WithContext(ctx)
	for {
		conn, err := lst.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return group.Wait()
			default:
				return fmt.Errorf("accept: %w", err)
			}
		}

		c := newConn(conn, s.DB, s.specs, s.Log)
		group.Go(func() error {
			c.serve()
			return nil
		})
	}
}
