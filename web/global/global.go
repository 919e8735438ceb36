// Package global gives background jobs access to the running web server.
package global

import (
	"context"
)

var webServer WebServer

type WebServer interface {
	GetCtx() context.Context
	// GetIngestStats reports the Kafka consumer counters; ok is false when
	// no consumer runs.
	GetIngestStats() (consumed int64, failed int64, ok bool)
}

func SetWebServer(s WebServer) {
	webServer = s
}

func GetWebServer() WebServer {
	return webServer
}

// GetContext returns the server context, or a background context when no server runs.
func GetContext() context.Context {
	if webServer == nil {
		return context.Background()
	}
	return webServer.GetCtx()
}
