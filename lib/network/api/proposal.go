package api

import (
	"encoding/base64"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"conclave.io/conclave/lib/common/observer"
	"conclave.io/conclave/lib/errors"
	"conclave.io/conclave/lib/ledger"
	"conclave.io/conclave/lib/network/httputils"
	"conclave.io/conclave/lib/network/api/resource"
)

func parseProposalID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.BadRequestParameter.Clone().SetData("error", err.Error())
	}
	return id, nil
}

func (api NetworkHandlerAPI) GetProposalsHandler(w http.ResponseWriter, r *http.Request) {
	p, err := httputils.NewPageQuery(r)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	options := p.ListOptions()

	readFunc := func() ([]resource.Resource, []byte) {
		var rs []resource.Resource
		var cursor []byte
		iterFunc, closeFunc := api.ledger.Proposals(options)
		for {
			pp, hasNext := iterFunc()
			if !hasNext {
				break
			}
			rs = append(rs, resource.NewProposal(pp))
			cursor = []byte(ledger.GetProposalKey(pp.ID))
		}
		closeFunc()
		return rs, cursor
	}

	if httputils.IsEventStream(r) {
		event := observer.NewEvent(observer.ResourceProposal, observer.ConditionAll, "").String()
		es := NewEventStream(w, r, renderEventStream, DefaultContentType)
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

func (api NetworkHandlerAPI) GetProposalHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := parseProposalID(vars["id"])
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	pp, err := api.ledger.Proposal(id)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	if httputils.IsEventStream(r) {
		event := observer.NewEvent(observer.ResourceProposal, observer.ConditionProposal, vars["id"]).String()
		es := NewEventStream(w, r, renderEventStream, DefaultContentType)
		es.Render(resource.NewProposal(pp))
		es.Run(observer.ResourceObserver, event)
		return
	}

	httputils.MustWriteJSON(w, 200, resource.NewProposal(pp))
}

type ProposalPostRequest struct {
	Source  string `json:"source"`
	Target  string `json:"target"`
	Payload string `json:"payload"` // base64
}

func (api NetworkHandlerAPI) PostProposalHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	if ct := r.Header.Get("Content-Type"); ct != "application/json" {
		httputils.WriteJSONError(w, errors.InvalidContentType)
		return
	}

	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		httputils.WriteJSONError(w, errors.BadRequestParameter)
		return
	}

	var req ProposalPostRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httputils.WriteJSONError(w, errors.BadRequestParameter.Clone().SetData("error", err.Error()))
		return
	}
	if len(req.Source) < 1 || len(req.Target) < 1 {
		httputils.WriteJSONError(w, errors.BadRequestParameter)
		return
	}

	payload, err := base64.StdEncoding.DecodeString(req.Payload)
	if err != nil {
		httputils.WriteJSONError(w, errors.BadRequestParameter.Clone().SetData("error", err.Error()))
		return
	}

	id, err := api.ledger.CreateProposal(req.Source, req.Target, payload)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	pp, err := api.ledger.Proposal(id)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.MustWriteJSON(w, 201, resource.NewProposal(pp))
}
