// Package network holds listener helpers for the web server.
package network

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
)

// tlsRecordHandshake is the first byte of every TLS ClientHello.
const tlsRecordHandshake = 0x16

// RedirectListener serves TLS and plain HTTP on one port. It is meant to be
// wrapped by tls.NewListener: plain HTTP requests never reach the TLS layer
// and are answered with a redirect to the https URL.
type RedirectListener struct {
	net.Listener
}

func NewRedirectListener(listener net.Listener) net.Listener {
	return &RedirectListener{Listener: listener}
}

func (l *RedirectListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return &redirectConn{Conn: conn, reader: bufio.NewReader(conn)}, nil
}

// redirectConn inspects the first byte on the first Read.
type redirectConn struct {
	net.Conn
	reader *bufio.Reader

	once  sync.Once
	plain bool
}

func (c *redirectConn) Read(b []byte) (int, error) {
	c.once.Do(func() {
		first, err := c.reader.Peek(1)
		if err != nil || first[0] == tlsRecordHandshake {
			return
		}
		c.plain = true
		c.redirect()
	})
	if c.plain {
		return 0, io.EOF
	}
	return c.reader.Read(b)
}

func (c *redirectConn) redirect() {
	defer c.Conn.Close()

	request, err := http.ReadRequest(c.reader)
	if err != nil {
		return
	}
	resp := http.Response{
		StatusCode: http.StatusTemporaryRedirect,
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     http.Header{},
	}
	resp.Header.Set("Location", fmt.Sprintf("https://%s%s", request.Host, request.RequestURI))
	resp.Header.Set("Connection", "close")
	_ = resp.Write(c.Conn)
}
