package network

import (
	"bufio"
	"io"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedirectConnAnswersPlainHTTP(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	conn := &redirectConn{Conn: server, reader: bufio.NewReader(server)}

	readErr := make(chan error, 1)
	go func() {
		_, err := conn.Read(make([]byte, 16))
		readErr <- err
	}()

	go func() {
		_, _ = client.Write([]byte("GET /news/1/ HTTP/1.1\r\nHost: news.example\r\n\r\n"))
	}()

	resp, err := http.ReadResponse(bufio.NewReader(client), nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "https://news.example/news/1/", resp.Header.Get("Location"))
	assert.ErrorIs(t, <-readErr, io.EOF)
}

func TestRedirectConnPassesTLSThrough(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()
	conn := &redirectConn{Conn: server, reader: bufio.NewReader(server)}

	hello := []byte{tlsRecordHandshake, 0x03, 0x01}
	go func() {
		_, _ = client.Write(hello)
	}()

	buf := make([]byte, len(hello))
	_, err := io.ReadFull(conn, buf)
	require.NoError(t, err)
	assert.Equal(t, hello, buf)
}
