package api

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/gorilla/mux"

	"conclave.io/conclave/lib/executor"
	"conclave.io/conclave/lib/ledger"
	"conclave.io/conclave/lib/membership"
	"conclave.io/conclave/lib/storage"
)

const (
	QueryPattern = "cursor={cursor}&limit={limit}&reverse={reverse}"
)

func prepareAPIServer(members int, threshold uint64) (*httptest.Server, *ledger.Ledger, []string, *executor.DispatchExecutor, *storage.LevelDBBackend) {
	st := storage.NewTestStorage()

	var addresses []string
	for i := 0; i < members; i++ {
		addresses = append(addresses, fmt.Sprintf("GTEST%03d", i))
	}

	registry, err := membership.NewRegistry(addresses[0], addresses[1:]...)
	if err != nil {
		panic(err)
	}

	ex := executor.NewDispatchExecutor()
	ex.Register("payout", func(payload []byte) error {
		return nil
	})

	lg, err := ledger.NewLedger(st, registry, ex, threshold)
	if err != nil {
		panic(err)
	}

	apiHandler := NetworkHandlerAPI{ledger: lg, storage: st}

	router := mux.NewRouter()
	router.HandleFunc(GetProposalsHandlerPattern, apiHandler.GetProposalsHandler).Methods("GET")
	router.HandleFunc(PostProposalPattern, apiHandler.PostProposalHandler).Methods("POST")
	router.HandleFunc(GetProposalHandlerPattern, apiHandler.GetProposalHandler).Methods("GET")
	router.HandleFunc(GetVotesHandlerPattern, apiHandler.GetVotesHandler).Methods("GET")
	router.HandleFunc(PostVotePattern, apiHandler.PostVoteHandler).Methods("POST")
	router.HandleFunc(GetVoteHandlerPattern, apiHandler.GetVoteHandler).Methods("GET")
	router.HandleFunc(GetMembersHandlerPattern, apiHandler.GetMembersHandler).Methods("GET")
	router.HandleFunc(GetMemberHandlerPattern, apiHandler.GetMemberHandler).Methods("GET")
	router.HandleFunc(PostSubscribePattern, apiHandler.PostSubscribeHandler).Methods("POST")
	ts := httptest.NewServer(router)
	return ts, lg, addresses, ex, st
}

func request(ts *httptest.Server, url string, streaming bool) (io.ReadCloser, error) {
	// Do a Request
	url = ts.URL + url
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	if streaming {
		req.Header.Set("Accept", "text/event-stream")
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
