package api

import (
	"encoding/json"
	"io/ioutil"
	"net/http"

	"github.com/gorilla/mux"

	"conclave.io/conclave/lib/common/observer"
	"conclave.io/conclave/lib/errors"
	"conclave.io/conclave/lib/network/httputils"
	"conclave.io/conclave/lib/network/api/resource"
)

func (api NetworkHandlerAPI) GetVotesHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := parseProposalID(vars["id"])
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	if _, err := api.ledger.Proposal(id); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	p, err := httputils.NewPageQuery(r)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	options := p.ListOptions()

	readFunc := func() ([]resource.Resource, []byte) {
		var rs []resource.Resource
		var cursor []byte
		iterFunc, closeFunc := api.ledger.Votes(id, options)
		for {
			vr, hasNext := iterFunc()
			if !hasNext {
				break
			}
			rs = append(rs, resource.NewVote(id, vr.Address, vr.State))
			cursor = []byte(vr.Address)
		}
		closeFunc()
		return rs, cursor
	}

	if httputils.IsEventStream(r) {
		event := observer.NewEvent(observer.ResourceVote, observer.ConditionProposal, vars["id"]).String()
		es := NewEventStream(w, r, api.renderVoteEventStream, DefaultContentType)
		rs, _ := readFunc()
		for _, res := range rs {
			es.Render(res)
		}
		es.Run(observer.ResourceObserver, event)
		return
	}

	rs, cursor := readFunc()
	list := p.ResourceList(rs, cursor)
	httputils.MustWriteJSON(w, 200, list)
}

func (api NetworkHandlerAPI) GetVoteHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := parseProposalID(vars["id"])
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}
	address := vars["address"]

	vs, err := api.ledger.Vote(id, address)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	if httputils.IsEventStream(r) {
		event := observer.NewEvent(observer.ResourceVote, observer.ConditionSource, address).String()
		es := NewEventStream(w, r, api.renderVoteEventStream, DefaultContentType)
		es.Render(resource.NewVote(id, address, vs))
		es.Run(observer.ResourceObserver, event)
		return
	}

	httputils.MustWriteJSON(w, 200, resource.NewVote(id, address, vs))
}

type VotePostRequest struct {
	Source   string `json:"source"`
	Supports *bool  `json:"supports"`
}

func (api NetworkHandlerAPI) PostVoteHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	vars := mux.Vars(r)
	id, err := parseProposalID(vars["id"])
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	if ct := r.Header.Get("Content-Type"); ct != "application/json" {
		httputils.WriteJSONError(w, errors.InvalidContentType)
		return
	}

	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		httputils.WriteJSONError(w, errors.BadRequestParameter)
		return
	}

	var req VotePostRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httputils.WriteJSONError(w, errors.BadRequestParameter.Clone().SetData("error", err.Error()))
		return
	}
	if len(req.Source) < 1 || req.Supports == nil {
		httputils.WriteJSONError(w, errors.BadRequestParameter)
		return
	}

	if err := api.ledger.CastVote(req.Source, id, *req.Supports); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	vs, err := api.ledger.Vote(id, req.Source)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.MustWriteJSON(w, 200, resource.NewVote(id, req.Source, vs))
}
