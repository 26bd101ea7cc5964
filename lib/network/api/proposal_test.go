package api

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"io/ioutil"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"conclave.io/conclave/lib/common"
)

func TestAPIGetProposalsHandler(t *testing.T) {
	ts, lg, addresses, _, st := prepareAPIServer(3, 3)
	defer st.Close()
	defer ts.Close()

	for i := 0; i < 3; i++ {
		_, err := lg.CreateProposal(addresses[0], "payout", []byte("showme"))
		require.NoError(t, err)
	}

	body, err := request(ts, GetProposalsHandlerPattern, false)
	require.NoError(t, err)
	defer body.Close()

	bs, err := ioutil.ReadAll(bufio.NewReader(body))
	require.NoError(t, err)

	var f interface{}
	common.MustUnmarshalJSON(bs, &f)
	records := f.(map[string]interface{})["_embedded"].(map[string]interface{})["records"].([]interface{})
	require.Equal(t, 3, len(records))

	first := records[0].(map[string]interface{})
	require.Equal(t, float64(0), first["id"])
	require.Equal(t, "payout", first["target"])
	require.Equal(t, false, first["executed"])
}

func TestAPIGetProposalHandler(t *testing.T) {
	ts, lg, addresses, _, st := prepareAPIServer(3, 3)
	defer st.Close()
	defer ts.Close()

	id, err := lg.CreateProposal(addresses[0], "payout", []byte("showme"))
	require.NoError(t, err)
	require.Equal(t, uint64(0), id)

	body, err := request(ts, "/proposals/0", false)
	require.NoError(t, err)
	defer body.Close()

	bs, err := ioutil.ReadAll(bufio.NewReader(body))
	require.NoError(t, err)

	var f interface{}
	common.MustUnmarshalJSON(bs, &f)
	m := f.(map[string]interface{})
	require.Equal(t, float64(0), m["id"])
	require.Equal(t, "payout", m["target"])
	require.Equal(t, base64.StdEncoding.EncodeToString([]byte("showme")), m["payload"])
	require.Equal(t, float64(0), m["yes_count"])
}

func TestAPIGetProposalHandlerNotFound(t *testing.T) {
	ts, _, _, _, st := prepareAPIServer(3, 3)
	defer st.Close()
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/proposals/99")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIPostProposalHandler(t *testing.T) {
	ts, lg, addresses, _, st := prepareAPIServer(3, 3)
	defer st.Close()
	defer ts.Close()

	payload := base64.StdEncoding.EncodeToString([]byte("showme"))
	body := common.MustMarshalJSON(ProposalPostRequest{
		Source:  addresses[0],
		Target:  "payout",
		Payload: payload,
	})

	resp, err := http.Post(ts.URL+PostProposalPattern, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	count, err := lg.Count()
	require.NoError(t, err)
	require.Equal(t, uint64(1), count)

	p, err := lg.Proposal(0)
	require.NoError(t, err)
	require.Equal(t, []byte("showme"), p.Payload)
}

func TestAPIPostProposalHandlerNonMember(t *testing.T) {
	ts, _, _, _, st := prepareAPIServer(3, 3)
	defer st.Close()
	defer ts.Close()

	body := common.MustMarshalJSON(ProposalPostRequest{
		Source: "GOUTSIDER",
		Target: "payout",
	})

	resp, err := http.Post(ts.URL+PostProposalPattern, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPIPostProposalHandlerInvalidContentType(t *testing.T) {
	ts, _, addresses, _, st := prepareAPIServer(3, 3)
	defer st.Close()
	defer ts.Close()

	body := common.MustMarshalJSON(ProposalPostRequest{
		Source: addresses[0],
		Target: "payout",
	})

	resp, err := http.Post(ts.URL+PostProposalPattern, "text/plain", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIGetProposalHandlerStream(t *testing.T) {
	ts, lg, addresses, _, st := prepareAPIServer(5, 3)
	defer st.Close()
	defer ts.Close()

	id, err := lg.CreateProposal(addresses[0], "payout", nil)
	require.NoError(t, err)

	body, err := request(ts, "/proposals/0", true)
	require.NoError(t, err)
	defer body.Close()

	reader := bufio.NewReader(body)

	// first line is the current state
	line, err := reader.ReadBytes('\n')
	require.NoError(t, err)
	var f interface{}
	common.MustUnmarshalJSON(line, &f)
	require.Equal(t, float64(0), f.(map[string]interface{})["yes_count"])

	go func() {
		time.Sleep(100 * time.Millisecond)
		lg.CastVote(addresses[1], id, true)
	}()

	// the vote retriggers the proposal event with updated tallies
	line, err = reader.ReadBytes('\n')
	require.NoError(t, err)
	common.MustUnmarshalJSON(line, &f)
	require.Equal(t, float64(1), f.(map[string]interface{})["yes_count"])
}
