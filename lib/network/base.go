package network

import (
	"net"
	"net/http"

	"github.com/gorilla/mux"

	"conclave.io/conclave/lib/common"
)

type Network interface {
	Endpoint() *common.Endpoint
	AddHandler(string, http.HandlerFunc) *mux.Route
	AddMiddleware(string, ...mux.MiddlewareFunc) error
	AddWatcher(func(Network, net.Conn, http.ConnState))

	// Starts network handling
	// Blocks until finished, either because of an error
	// or because `Stop` was called
	Start() error
	Stop()
	Ready() error
	IsReady() bool
}
