//
// Admin-only JSON-RPC endpoint, serving raw storage inspection and ledger
// introspection. It is expected to be bound to a loopback or otherwise
// protected endpoint.
//
package jsonrpc

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/rpc"
	jsonrpc "github.com/gorilla/rpc/json"

	"conclave.io/conclave/lib/common"
	"conclave.io/conclave/lib/ledger"
	"conclave.io/conclave/lib/storage"
)

const MaxLimitListOptions uint64 = 10000

type DBEchoArgs string
type DBEchoResult string

type DBHasArgs string
type DBHasResult bool

type DBGetArgs string
type DBGetResult storage.IterItem

type GetIteratorOptions struct {
	Reverse bool
	Cursor  []byte
	Limit   uint64
}

type DBGetIteratorArgs struct {
	Prefix  string
	Options GetIteratorOptions
}

type DBGetIteratorResult struct {
	Limit uint64
	Items []storage.IterItem
}

type dbApp struct {
	st *storage.LevelDBBackend
}

func (j *dbApp) Echo(r *http.Request, args *DBEchoArgs, result *DBEchoResult) error {
	*result = DBEchoResult(string(*args))
	return nil
}

func (j *dbApp) Has(r *http.Request, args *DBHasArgs, result *DBHasResult) error {
	o, err := j.st.Has(string(*args))
	if err != nil {
		return err
	}

	*result = DBHasResult(o)
	return nil
}

func (j *dbApp) Get(r *http.Request, args *DBGetArgs, result *DBGetResult) error {
	o, err := j.st.GetRaw(string(*args))
	if err != nil {
		return err
	}

	*result = DBGetResult{Key: []byte(*args), Value: o}
	return nil
}

func (j *dbApp) GetIterator(r *http.Request, args *DBGetIteratorArgs, result *DBGetIteratorResult) error {
	limit := args.Options.Limit
	if limit > MaxLimitListOptions {
		limit = MaxLimitListOptions
	}

	options := storage.NewDefaultListOptions(
		args.Options.Reverse,
		args.Options.Cursor,
		limit,
	)

	it, closeFunc := j.st.GetIterator(args.Prefix, options)
	defer closeFunc()

	collected := []storage.IterItem{}
	for {
		v, hasNext := it()
		if !hasNext {
			break
		}

		collected = append(collected, v.Clone())
	}

	result.Items = collected
	result.Limit = limit

	return nil
}

type LedgerCountArgs struct{}
type LedgerCountResult uint64

type LedgerThresholdArgs struct{}
type LedgerThresholdResult uint64

type ledgerApp struct {
	lg *ledger.Ledger
}

func (j *ledgerApp) Count(r *http.Request, args *LedgerCountArgs, result *LedgerCountResult) error {
	count, err := j.lg.Count()
	if err != nil {
		return err
	}

	*result = LedgerCountResult(count)
	return nil
}

func (j *ledgerApp) Threshold(r *http.Request, args *LedgerThresholdArgs, result *LedgerThresholdResult) error {
	*result = LedgerThresholdResult(j.lg.Threshold())
	return nil
}

type Server struct {
	endpoint *common.Endpoint
	st       *storage.LevelDBBackend
	lg       *ledger.Ledger

	server *http.Server
}

func NewServer(endpoint *common.Endpoint, st *storage.LevelDBBackend, lg *ledger.Ledger) *Server {
	return &Server{
		endpoint: endpoint,
		st:       st,
		lg:       lg,
	}
}

type internalServer struct {
	*rpc.Server
}

func (s *internalServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set(
		"Access-Control-Allow-Headers",
		"Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization",
	)

	if r.Method == "OPTIONS" {
		return
	}

	s.Server.ServeHTTP(w, r)
}

func (j *Server) Ready() *mux.Router {
	s := &internalServer{Server: rpc.NewServer()}
	s.RegisterCodec(jsonrpc.NewCodec(), "application/json")
	s.RegisterCodec(jsonrpc.NewCodec(), "application/json;charset=UTF-8")

	s.RegisterService(&dbApp{st: j.st}, "DB")
	s.RegisterService(&ledgerApp{lg: j.lg}, "Ledger")

	router := mux.NewRouter()

	path := j.endpoint.Path
	if len(path) < 1 {
		path = "/"
	}
	router.Handle(path, s)

	return router
}

func (j *Server) Start() error {
	router := j.Ready()

	j.server = &http.Server{Addr: j.endpoint.Host, Handler: router}

	err := func() error {
		if strings.ToLower(j.endpoint.Scheme) == "http" {
			return j.server.ListenAndServe()
		}

		tlsCertFile := j.endpoint.Query().Get("TLSCertFile")
		tlsKeyFile := j.endpoint.Query().Get("TLSKeyFile")

		return j.server.ListenAndServeTLS(tlsCertFile, tlsKeyFile)
	}()

	if err == http.ErrServerClosed {
		return nil
	}

	return err
}

func (j *Server) Stop() {
	if j.server != nil {
		j.server.Close()
	}
}
