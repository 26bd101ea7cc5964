//
// Struct that bridges together components of a node
//
// NodeRunner bridges together the network, storage, ledger and `LocalNode`.
// In this regard, it can be seen as a single node, and is used as such
// in unit tests.
//
package runner

import (
	"net/http"
	"net/http/pprof"
	"time"

	ghandlers "github.com/gorilla/handlers"
	logging "github.com/inconshreveable/log15"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"conclave.io/conclave/lib/common"
	"conclave.io/conclave/lib/ledger"
	"conclave.io/conclave/lib/metrics"
	"conclave.io/conclave/lib/network"
	"conclave.io/conclave/lib/network/api"
	"conclave.io/conclave/lib/network/httpcache"
	"conclave.io/conclave/lib/node"
	"conclave.io/conclave/lib/storage"
)

var log logging.Logger = logging.New("module", "runner")

func SetLogging(level logging.Lvl, handler logging.Handler) {
	common.SetLogging(log, level, handler)
}

var DebugPProf bool

// cacheWrapper hides whether response caching is enabled at all.
type cacheWrapper interface {
	WrapHandlerFunc(http.HandlerFunc) http.HandlerFunc
}

type NodeRunner struct {
	localNode *node.LocalNode
	network   network.Network
	ledger    *ledger.Ledger
	storage   *storage.LevelDBBackend

	cache cacheWrapper

	log  logging.Logger
	Conf common.Config

	nodeInfo node.NodeInfo
}

func NewNodeRunner(
	localNode *node.LocalNode,
	nt network.Network,
	lg *ledger.Ledger,
	st *storage.LevelDBBackend,
	conf common.Config,
) (nr *NodeRunner, err error) {
	nr = &NodeRunner{
		localNode: localNode,
		network:   nt,
		ledger:    lg,
		storage:   st,
		log:       log.New(logging.Ctx{"node": localNode.Alias()}),
		Conf:      conf,
	}

	if len(conf.HTTPCacheAdapter) < 1 {
		nr.cache = httpcache.NewNopClient()
	} else {
		var adapter httpcache.Adapter
		if adapter, err = httpcache.NewAdapter(conf); err != nil {
			return
		}
		if nr.cache, err = httpcache.NewClient(
			httpcache.WithAdapter(adapter),
			httpcache.WithExpire(time.Minute),
			httpcache.WithStatusCode(http.StatusNotFound, time.Second),
			httpcache.WithLogger(nr.log),
		); err != nil {
			return
		}
	}

	nr.nodeInfo = NewNodeInfo(nr)

	return
}

func (nr *NodeRunner) Ready() {
	// BaseRouter's middlewares impact all sub routers.
	if err := nr.network.AddMiddleware("", network.RecoverMiddleware(false)); err != nil {
		nr.log.Error("Middleware has an error", "err", err)
		return
	}

	if err := nr.network.AddMiddleware(network.RouterNameAPI, network.MetricsMiddleware(metrics.API)); err != nil {
		nr.log.Error("Middleware has an error", "err", err)
		return
	}

	{ // CORS
		allowedOrigins := ghandlers.AllowedOrigins([]string{"*"})
		allowedMethods := ghandlers.AllowedMethods([]string{"GET", "POST"})
		allowedHeaders := ghandlers.AllowedHeaders([]string{"Content-Type", "X-Requested-With", "Cache-Control", "Access-Control"})

		cors := ghandlers.CORS(allowedOrigins, allowedMethods, allowedHeaders)
		if err := nr.network.AddMiddleware(network.RouterNameAPI, cors); err != nil {
			nr.log.Error("Middleware has an error", "err", err)
			return
		}
	}

	nr.network.AddHandler(network.UrlPathPrefixMetric, promhttp.Handler().ServeHTTP)

	apiHandler := api.NewNetworkHandlerAPI(
		nr.localNode,
		nr.ledger,
		nr.storage,
		network.UrlPathPrefixAPI,
		nr.nodeInfo,
	)

	nr.network.AddHandler(
		apiHandler.HandlerURLPattern(api.GetProposalsHandlerPattern),
		apiHandler.GetProposalsHandler,
	).Methods("GET", "OPTIONS")
	nr.network.AddHandler(
		apiHandler.HandlerURLPattern(api.PostProposalPattern),
		apiHandler.PostProposalHandler,
	).Methods("POST").Headers("Content-Type", "application/json")
	nr.network.AddHandler(
		apiHandler.HandlerURLPattern(api.GetProposalHandlerPattern),
		apiHandler.GetProposalHandler,
	).Methods("GET", "OPTIONS")
	nr.network.AddHandler(
		apiHandler.HandlerURLPattern(api.GetVotesHandlerPattern),
		apiHandler.GetVotesHandler,
	).Methods("GET", "OPTIONS")
	nr.network.AddHandler(
		apiHandler.HandlerURLPattern(api.PostVotePattern),
		apiHandler.PostVoteHandler,
	).Methods("POST").Headers("Content-Type", "application/json")
	nr.network.AddHandler(
		apiHandler.HandlerURLPattern(api.GetVoteHandlerPattern),
		apiHandler.GetVoteHandler,
	).Methods("GET", "OPTIONS")
	nr.network.AddHandler(
		apiHandler.HandlerURLPattern(api.GetMembersHandlerPattern),
		nr.cache.WrapHandlerFunc(apiHandler.GetMembersHandler),
	).Methods("GET", "OPTIONS")
	nr.network.AddHandler(
		apiHandler.HandlerURLPattern(api.GetMemberHandlerPattern),
		nr.cache.WrapHandlerFunc(apiHandler.GetMemberHandler),
	).Methods("GET", "OPTIONS")
	nr.network.AddHandler(
		apiHandler.HandlerURLPattern(api.PostSubscribePattern),
		apiHandler.PostSubscribeHandler,
	).Methods("POST")

	// pprof
	if DebugPProf == true {
		nr.network.AddHandler(network.UrlPathPrefixDebug+"/pprof/cmdline", pprof.Cmdline)
		nr.network.AddHandler(network.UrlPathPrefixDebug+"/pprof/profile", pprof.Profile)
		nr.network.AddHandler(network.UrlPathPrefixDebug+"/pprof/symbol", pprof.Symbol)
		nr.network.AddHandler(network.UrlPathPrefixDebug+"/pprof/trace", pprof.Trace)
		nr.network.AddHandler(network.UrlPathPrefixDebug+"/pprof/*", pprof.Index)
	}

	nr.network.AddHandler(api.GetNodeInfoPattern, apiHandler.GetNodeInfoHandler).Methods("GET")

	nr.network.Ready()
}

func (nr *NodeRunner) Start() (err error) {
	nr.log.Debug("NodeRunner started")
	nr.Ready()

	if err = nr.network.Start(); err != nil {
		return
	}

	return
}

func (nr *NodeRunner) Stop() {
	nr.network.Stop()
}

func (nr *NodeRunner) Node() *node.LocalNode {
	return nr.localNode
}

func (nr *NodeRunner) Network() network.Network {
	return nr.network
}

func (nr *NodeRunner) Ledger() *ledger.Ledger {
	return nr.ledger
}

func (nr *NodeRunner) Storage() *storage.LevelDBBackend {
	return nr.storage
}

func (nr *NodeRunner) Log() logging.Logger {
	return nr.log
}

func (nr *NodeRunner) NodeInfo() node.NodeInfo {
	return nr.nodeInfo
}
