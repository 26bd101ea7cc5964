package client

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"conclave.io/conclave/lib/executor"
	"conclave.io/conclave/lib/ledger"
	"conclave.io/conclave/lib/membership"
	"conclave.io/conclave/lib/network/api"
	"conclave.io/conclave/lib/node"
	"conclave.io/conclave/lib/storage"
)

func prepareClientServer(t *testing.T, members int, threshold uint64) (*Client, *ledger.Ledger, []string, func()) {
	st := storage.NewTestStorage()

	var addresses []string
	for i := 0; i < members; i++ {
		addresses = append(addresses, fmt.Sprintf("GTEST%03d", i))
	}

	registry, err := membership.NewRegistry(addresses[0], addresses[1:]...)
	require.NoError(t, err)

	ex := executor.NewDispatchExecutor()
	ex.Register("payout", func(payload []byte) error {
		return nil
	})

	lg, err := ledger.NewLedger(st, registry, ex, threshold)
	require.NoError(t, err)

	handler := api.NewNetworkHandlerAPI(nil, lg, st, "/api", node.NodeInfo{})

	router := mux.NewRouter()
	router.HandleFunc(handler.HandlerURLPattern(api.GetProposalsHandlerPattern), handler.GetProposalsHandler).Methods("GET")
	router.HandleFunc(handler.HandlerURLPattern(api.PostProposalPattern), handler.PostProposalHandler).Methods("POST")
	router.HandleFunc(handler.HandlerURLPattern(api.GetProposalHandlerPattern), handler.GetProposalHandler).Methods("GET")
	router.HandleFunc(handler.HandlerURLPattern(api.GetVotesHandlerPattern), handler.GetVotesHandler).Methods("GET")
	router.HandleFunc(handler.HandlerURLPattern(api.PostVotePattern), handler.PostVoteHandler).Methods("POST")
	router.HandleFunc(handler.HandlerURLPattern(api.GetVoteHandlerPattern), handler.GetVoteHandler).Methods("GET")
	router.HandleFunc(handler.HandlerURLPattern(api.GetMembersHandlerPattern), handler.GetMembersHandler).Methods("GET")
	router.HandleFunc(handler.HandlerURLPattern(api.GetMemberHandlerPattern), handler.GetMemberHandler).Methods("GET")
	ts := httptest.NewServer(router)

	c := NewClient(ts.URL)

	done := func() {
		ts.Close()
		c.HTTP.Close()
		c.post.Close()
	}
	return c, lg, addresses, done
}

func TestClientProposalLifecycle(t *testing.T) {
	c, _, addresses, done := prepareClientServer(t, 3, 2)
	defer done()

	payload := []byte(`{"amount":100}`)
	created, err := c.CreateProposal(addresses[0], "payout", payload)
	require.NoError(t, err)
	require.Equal(t, uint64(0), created.ID)
	require.Equal(t, "payout", created.Target)
	require.False(t, created.Executed)

	decoded, err := created.DecodedPayload()
	require.NoError(t, err)
	require.Equal(t, payload, decoded)

	loaded, err := c.LoadProposal(created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, loaded.ID)
	require.Equal(t, uint64(0), loaded.YesCount)

	page, err := c.LoadProposals()
	require.NoError(t, err)
	require.Equal(t, 1, len(page.Embedded.Records))
}

func TestClientCastVoteUntilExecuted(t *testing.T) {
	c, _, addresses, done := prepareClientServer(t, 3, 2)
	defer done()

	created, err := c.CreateProposal(addresses[0], "payout", []byte("x"))
	require.NoError(t, err)

	vote, err := c.CastVote(created.ID, addresses[0], true)
	require.NoError(t, err)
	require.Equal(t, "YES", vote.State)

	_, err = c.CastVote(created.ID, addresses[1], true)
	require.NoError(t, err)

	loaded, err := c.LoadProposal(created.ID)
	require.NoError(t, err)
	require.True(t, loaded.Executed)
	require.Equal(t, uint64(2), loaded.YesCount)

	votes, err := c.LoadVotes(created.ID)
	require.NoError(t, err)
	require.Equal(t, 2, len(votes.Embedded.Records))
}

func TestClientLoadVoteAbsent(t *testing.T) {
	c, _, addresses, done := prepareClientServer(t, 3, 2)
	defer done()

	_, err := c.CreateProposal(addresses[0], "payout", []byte("x"))
	require.NoError(t, err)

	vote, err := c.LoadVote(0, addresses[2])
	require.NoError(t, err)
	require.Equal(t, "ABSENT", vote.State)
}

func TestClientNonMemberProblem(t *testing.T) {
	c, _, _, done := prepareClientServer(t, 3, 2)
	defer done()

	_, err := c.CreateProposal("GOUTSIDER", "payout", []byte("x"))
	require.Error(t, err)

	ce, ok := err.(Error)
	require.True(t, ok)
	require.Equal(t, http.StatusForbidden, ce.Problem.Status)
}

func TestClientLoadMembers(t *testing.T) {
	c, _, addresses, done := prepareClientServer(t, 3, 2)
	defer done()

	page, err := c.LoadMembers()
	require.NoError(t, err)
	require.Equal(t, len(addresses), len(page.Embedded.Records))

	member, err := c.LoadMember(addresses[0])
	require.NoError(t, err)
	require.Equal(t, addresses[0], member.Address)

	_, err = c.LoadMember("GUNKNOWN")
	require.Error(t, err)
	require.Equal(t, 404, err.(Error).Problem.Status)
}
