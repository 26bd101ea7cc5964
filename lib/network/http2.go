package network

import (
	"fmt"
	goLog "log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	logging "github.com/inconshreveable/log15"
	"golang.org/x/net/http2"

	"conclave.io/conclave/lib/common"
	"conclave.io/conclave/lib/errors"
)

type Handlers map[string]func(http.ResponseWriter, *http.Request)

const (
	RouterNameAPI    = "api"
	RouterNameMetric = "metric"
	RouterNameDebug  = "debug"
)

var (
	UrlPathPrefixAPI    = fmt.Sprintf("/%s", RouterNameAPI)
	UrlPathPrefixMetric = fmt.Sprintf("/%s", RouterNameMetric)
	UrlPathPrefixDebug  = fmt.Sprintf("/%s", RouterNameDebug)
)

type HTTP2Network struct {
	tlsCertFile string
	tlsKeyFile  string

	server    *http.Server
	router    *mux.Router
	rootRoute *mux.Route

	ready bool

	watchers []func(Network, net.Conn, http.ConnState)
	routers  map[string]*mux.Router
	handlers map[string]func(http.ResponseWriter, *http.Request)

	config *HTTP2NetworkConfig
	log    logging.Logger
}

type HandlerFunc func(w http.ResponseWriter, r *http.Request)

func NewHTTP2Network(config *HTTP2NetworkConfig) (h2n *HTTP2Network) {
	httpLog := log.New(logging.Ctx{"module": "http", "node": config.NodeName})
	errorLog := goLog.New(HTTP2ErrorLog15Writer{httpLog}, "", 0)

	server := &http.Server{
		Addr:              config.Addr,
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		WriteTimeout:      config.WriteTimeout,
		ErrorLog:          errorLog,
	}
	server.SetKeepAlivesEnabled(true)

	http2.ConfigureServer(
		server,
		&http2.Server{
			IdleTimeout: config.IdleTimeout,
		},
	)

	baseRouter := mux.NewRouter()

	h2n = &HTTP2Network{
		server:      server,
		router:      baseRouter,
		tlsCertFile: config.TLSCertFile,
		tlsKeyFile:  config.TLSKeyFile,
		log:         httpLog,
	}
	h2n.handlers = map[string]func(http.ResponseWriter, *http.Request){}
	h2n.routers = map[string]*mux.Router{
		RouterNameAPI:    baseRouter.PathPrefix(UrlPathPrefixAPI).Subrouter(),
		RouterNameMetric: baseRouter.PathPrefix(UrlPathPrefixMetric).Subrouter(),
		RouterNameDebug:  baseRouter.PathPrefix(UrlPathPrefixDebug).Subrouter(),
	}

	h2n.config = config

	h2n.setNotReadyHandler()
	h2n.server.ConnState = h2n.ConnState

	return
}

func (t *HTTP2Network) Endpoint() *common.Endpoint {
	return t.config.Endpoint
}

func (t *HTTP2Network) AddWatcher(f func(Network, net.Conn, http.ConnState)) {
	t.watchers = append(t.watchers, f)
}

func (t *HTTP2Network) ConnState(c net.Conn, state http.ConnState) {
	for _, f := range t.watchers {
		go f(t, c, state)
	}
}

func (t *HTTP2Network) setNotReadyHandler() {
	t.rootRoute = t.router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if !t.ready {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}
	})

	t.server.Handler = HTTP2Log15Handler{log: t.log, handler: t.router}
}

func (t *HTTP2Network) AddMiddleware(routerName string, mws ...mux.MiddlewareFunc) error {
	var r *mux.Router
	if len(routerName) < 1 {
		r = t.router
	} else {
		var ok bool
		if r, ok = t.routers[routerName]; !ok {
			return errors.NotMatchHTTPRouter
		}
	}
	for _, mw := range mws {
		r.Use(mw)
	}
	return nil
}

func (t *HTTP2Network) AddHandler(pattern string, handler http.HandlerFunc) (router *mux.Route) {
	var routerName string
	var prefix string
	switch {
	case strings.HasPrefix(pattern, UrlPathPrefixAPI):
		routerName = RouterNameAPI
		prefix = pattern[len(UrlPathPrefixAPI):]
	case strings.HasPrefix(pattern, UrlPathPrefixMetric):
		routerName = RouterNameMetric
		prefix = pattern[len(UrlPathPrefixMetric):]
	case strings.HasPrefix(pattern, UrlPathPrefixDebug):
		routerName = RouterNameDebug
		prefix = pattern[len(UrlPathPrefixDebug):]
	default:
		if pattern == "" || pattern == "/" {
			return t.rootRoute.Handler(handler)
		} else {
			return t.router.HandleFunc(pattern, handler)
		}
	}

	r := t.routers[routerName]

	// if a pattern has a suffix *,the router sets path prefix and handler
	if strings.HasSuffix(prefix, "*") {
		pathPrefix := strings.TrimSuffix(prefix, "*")
		return r.PathPrefix(pathPrefix).Handler(handler)
	}
	return r.HandleFunc(prefix, handler)
}

func (t *HTTP2Network) Ready() error {
	t.server.Handler = HTTP2Log15Handler{log: t.log, handler: t.router}

	t.ready = true

	return nil
}

func (t *HTTP2Network) IsReady() bool {
	client, err := common.NewHTTP2Client(50*time.Millisecond, 50*time.Millisecond, false)
	if err != nil {
		return false
	}
	defer client.Close()

	if _, err := client.Get(t.Endpoint().String(), http.Header{}); err != nil {
		return false
	}

	return true
}

// Start will start `HTTP2Network`.
func (t *HTTP2Network) Start() (err error) {
	if strings.ToLower(t.config.Endpoint.Scheme) == "http" {
		err = t.server.ListenAndServe()
	} else {
		err = t.server.ListenAndServeTLS(t.tlsCertFile, t.tlsKeyFile)
	}

	if err == http.ErrServerClosed {
		err = nil
	}

	return
}

func (t *HTTP2Network) Stop() {
	t.server.Close()
}
