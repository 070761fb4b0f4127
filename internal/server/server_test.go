package server

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/akashmaji946/respkv/internal/common"
	"github.com/akashmaji946/respkv/internal/store"
)

func startTestServer(t *testing.T) (addr string, db *store.Database) {
	t.Helper()

	lst, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	db = store.NewDatabase()
	srv := New(db, common.NewLogger())
	srv.lst = lst

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go func() {
		<-ctx.Done()
		lst.Close()
	}()

	go func() {
		for {
			c, err := lst.Accept()
			if err != nil {
				return
			}
			conn := newConn(c, srv.DB, srv.specs, srv.Log)
			go conn.serve()
		}
	}()

	return lst.Addr().String(), db
}

func TestEndToEndPingSetGet(t *testing.T) {
	addr, _ := startTestServer(t)

	c, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer c.Close()

	r := bufio.NewReader(c)

	_, err = c.Write([]byte("*1\r\n$4\r\nPING\r\n"))
	require.NoError(t, err)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "+PONG\r\n", line)

	_, err = c.Write([]byte("*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n"))
	require.NoError(t, err)
	line, err = r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "+OK\r\n", line)

	_, err = c.Write([]byte("*2\r\n$3\r\nGET\r\n$3\r\nfoo\r\n"))
	require.NoError(t, err)
	lenLine, err := r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "$3\r\n", lenLine)
	dataLine, err := r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "bar\r\n", dataLine)
}

func TestEndToEndSetWithExpiry(t *testing.T) {
	addr, _ := startTestServer(t)

	c, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer c.Close()
	r := bufio.NewReader(c)

	_, err = c.Write([]byte("*5\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n$2\r\nPX\r\n$2\r\n50\r\n"))
	require.NoError(t, err)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "+OK\r\n", line)

	time.Sleep(100 * time.Millisecond)

	_, err = c.Write([]byte("*2\r\n$3\r\nGET\r\n$1\r\nk\r\n"))
	require.NoError(t, err)
	line, err = r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "$-1\r\n", line)
}

func TestListenAndServeHandlesPing(t *testing.T) {
	// Reserve a free port, release it, and hand the address to
	// ListenAndServe itself so the listener it owns is never touched
	// from the test goroutine (avoids racing on srv's internal state).
	probe, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := probe.Addr().String()
	require.NoError(t, probe.Close())

	db := store.NewDatabase()
	srv := New(db, common.NewLogger())

	ctx, cancel := context.WithCancel(context.Background())
	serveErrCh := make(chan error, 1)
	go func() { serveErrCh <- srv.ListenAndServe(ctx, addr) }()

	var c net.Conn
	for i := 0; i < 50; i++ {
		c, err = net.Dial("tcp", addr)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, err)

	_, err = c.Write([]byte("*1\r\n$4\r\nPING\r\n"))
	require.NoError(t, err)

	buf := make([]byte, 7)
	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err = c.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "+PONG\r\n", string(buf))

	require.NoError(t, c.Close())
	cancel()
	require.NoError(t, <-serveErrCh)
}

func TestUnknownCommandClosesConnection(t *testing.T) {
	addr, _ := startTestServer(t)

	c, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Write([]byte("*1\r\n$4\r\nNOPE\r\n"))
	require.NoError(t, err)

	buf := make([]byte, 1)
	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err = c.Read(buf)
	require.Error(t, err)
}
