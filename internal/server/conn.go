/*
author: akashmaji
email: akashmaji@iisc.ac.in
file: respkv/internal/server/conn.go
*/

package server

import (
	"errors"
	"io"
	"net"

	"github.com/google/uuid"

	"github.com/akashmaji946/respkv/internal/command"
	"github.com/akashmaji946/respkv/internal/common"
	"github.com/akashmaji946/respkv/internal/resp"
	"github.com/akashmaji946/respkv/internal/respio"
	"github.com/akashmaji946/respkv/internal/store"
)

// conn is per-accepted-socket state: a buffered reader, the raw
// connection (used as the reply sink), and a borrowed reference to the
// shared database. Its lifetime ends when serve returns.
type conn struct {
	id    string
	netc  net.Conn
	r     *respio.Reader
	db    *store.Database
	specs *command.Node
	log   *common.Logger
}

func newConn(netc net.Conn, db *store.Database, specs *command.Node, log *common.Logger) *conn {
	return &conn{
		id:    uuid.NewString(),
		netc:  netc,
		r:     respio.NewStreamReader(netc),
		db:    db,
		specs: specs,
		log:   log,
	}
}

// serve runs the request/dispatch/reply loop until the peer closes the
// connection or an error occurs. Any error — protocol-level or I/O —
// terminates the connection; a clean EOF between requests is logged as a
// normal disconnect, not a failure.
func (c *conn) serve() {
	peer := c.netc.RemoteAddr()
	c.log.Info("[%s] accepted connection from %s", c.id, peer)
	defer c.netc.Close()

	ctx := &command.Context{DB: c.db, W: c.netc}

	for {
		tokens, err := resp.ReadStringArray(c.r)
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				c.log.Info("[%s] closed connection from %s", c.id, peer)
			} else {
				c.log.Error("[%s] read error from %s: %v", c.id, peer, err)
			}
			return
		}
		if len(tokens) == 0 {
			c.log.Error("[%s] empty request from %s", c.id, peer)
			return
		}

		if err := command.Dispatch(c.specs, ctx, tokens); err != nil {
			c.log.Error("[%s] command error from %s: %v", c.id, peer, err)
			return
		}
	}
}
