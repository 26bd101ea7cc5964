package api

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/GianlucaGuarini/go-observable"

	"conclave.io/conclave/lib/common/observer"
	"conclave.io/conclave/lib/errors"
	"conclave.io/conclave/lib/ledger"
	"conclave.io/conclave/lib/network/httputils"
	"conclave.io/conclave/lib/network/api/resource"
)

// DefaultContentType is "application/json"
const DefaultContentType = "application/json"

// renderEventStream turns a triggered ledger value into its resource
// document.
func renderEventStream(args ...interface{}) ([]byte, error) {
	if len(args) <= 1 {
		return nil, fmt.Errorf("render: value is empty")
	}
	i := args[1]

	if i == nil {
		return []byte{}, nil
	}

	switch v := i.(type) {
	case *ledger.Proposal:
		r := resource.NewProposal(v)
		return json.Marshal(r.Resource())
	case resource.Resource:
		return json.Marshal(v.Resource())
	}

	return json.Marshal(i)
}

// renderVoteEventStream resolves a `VoteCast` notification to the vote's
// current recorded state.
func (api NetworkHandlerAPI) renderVoteEventStream(args ...interface{}) ([]byte, error) {
	if len(args) <= 1 {
		return nil, fmt.Errorf("render: value is empty")
	}
	i := args[1]

	if i == nil {
		return []byte{}, nil
	}

	switch v := i.(type) {
	case ledger.VoteCast:
		vs, err := ledger.GetVote(api.storage, v.ProposalID, v.Source)
		if err != nil {
			return nil, err
		}
		r := resource.NewVote(v.ProposalID, v.Source, vs)
		return json.Marshal(r.Resource())
	case resource.Resource:
		return json.Marshal(v.Resource())
	}

	return json.Marshal(i)
}

func (api NetworkHandlerAPI) PostSubscribeHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	if !httputils.IsEventStream(r) {
		httputils.WriteJSONError(w, errors.BadRequestParameter)
		return
	}

	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		httputils.WriteJSONError(w, errors.BadRequestParameter)
		return
	}
	var subscribe observer.Subscribe
	if err := json.Unmarshal(body, &subscribe); err != nil {
		httputils.WriteJSONError(w, errors.BadRequestParameter.Clone().SetData("error", err.Error()))
		return
	}
	if len(subscribe.Events) < 1 {
		httputils.WriteJSONError(w, errors.BadRequestParameter)
		return
	}

	var events []string
	for _, e := range subscribe.Events {
		events = append(events, e.String())
	}

	renderFunc := func(args ...interface{}) ([]byte, error) {
		if len(args) <= 1 {
			return nil, fmt.Errorf("render: value is empty")
		}
		i := args[1]

		if i == nil {
			return []byte{}, nil
		}

		switch v := i.(type) {
		case *ledger.Proposal:
			r := resource.NewProposal(v)
			return json.Marshal(r.Resource())
		case ledger.VoteCast:
			vs, err := ledger.GetVote(api.storage, v.ProposalID, v.Source)
			if err != nil {
				return nil, err
			}
			r := resource.NewVote(v.ProposalID, v.Source, vs)
			return json.Marshal(r.Resource())
		}

		return json.Marshal(i)
	}

	es := NewEventStream(w, r, renderFunc, DefaultContentType)
	es.Render(nil)
	es.Run(observer.ResourceObserver, events...)
}

// EventStream handles chunked responses of a observable trigger
//
// renderFunc uses on observable.On() and Render function
type EventStream struct {
	contentType string
	renderFunc  RenderFunc
	request     *http.Request
	writer      http.ResponseWriter
	flusher     http.Flusher
	err         error
	rendered    bool
	stop        chan struct{}
}

type RenderFunc func(args ...interface{}) ([]byte, error)

// RenderJSONFunc marshals the triggered value as-is.
var RenderJSONFunc = func(args ...interface{}) ([]byte, error) {
	if len(args) <= 1 {
		return nil, fmt.Errorf("render: value is empty")
	}
	v := args[1]
	if v == nil {
		return nil, nil
	}
	bs, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bs, nil
}

// NewDefaultEventStream returns *EventStream with RenderJSONFunc and DefaultContentType
func NewDefaultEventStream(w http.ResponseWriter, r *http.Request) *EventStream {
	return NewEventStream(w, r, RenderJSONFunc, DefaultContentType)
}

// NewEventStream makes *EventStream and checks http.Flusher by type assertion.
func NewEventStream(w http.ResponseWriter, r *http.Request, renderFunc RenderFunc, ct string) *EventStream {
	es := &EventStream{
		request:     r,
		writer:      w,
		renderFunc:  renderFunc,
		contentType: ct,
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		es.err = fmt.Errorf("http: can't do chunked response ")
	} else {
		es.flusher = flusher
	}

	return es
}

// Render make a chunked response by using RenderFunc and flush it.
func (s *EventStream) Render(args ...interface{}) {
	if s.err != nil {
		return
	}

	var bs []byte
	var renderArgs []interface{}
	renderArgs = append(renderArgs, "pre")
	renderArgs = append(renderArgs, args...)
	if payload, err := s.renderFunc(renderArgs...); err != nil {
		bs = s.errMessage(err)
	} else {
		bs = payload
	}

	if !s.rendered {
		s.writer.Header().Set("Content-Type", s.contentType)
		s.rendered = true
	}

	fmt.Fprintf(s.writer, "%s\n", bs)
	s.flusher.Flush()
}

// Run start observing events.
//
// Simple use case:
//
// 	event := observer.NewEvent(observer.ResourceProposal, observer.ConditionAll, "").String()
// 	es := NewDefaultEventStream(w, r)
// 	es.Render(pp)
// 	es.Run(observer.ResourceObserver, event)
func (s *EventStream) Run(ob *observable.Observable, events ...string) {
	s.Start(ob, events...)()
}

// Start prepares for observing events and returns run func.
//
// In most case, Use Run instead of Start
func (s *EventStream) Start(ob *observable.Observable, events ...string) func() {
	if s.err != nil {
		http.Error(s.writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return func() {}
	}

	event := strings.Join(events, " ")
	msg := make(chan []byte)
	s.stop = make(chan struct{})

	onFunc := func(args ...interface{}) {
		var (
			payload []byte
			err     error
		)

		if len(args) > 1 {
			payload, err = s.renderFunc(args...)
		} else {
			var as []interface{}
			as = append(as, event)
			as = append(as, args...)
			payload, err = s.renderFunc(as...)
		}

		if err != nil {
			msg <- s.errMessage(err)
		}
		select {
		case msg <- payload:
		case <-s.stop:
			return
		}
	}
	ob.On(event, onFunc)

	return func() {
		defer ob.Off(event, onFunc)

		for {
			select {
			case payload := <-msg:
				fmt.Fprintf(s.writer, "%s\n", payload)
				s.flusher.Flush()
			case <-s.request.Context().Done():
				close(s.stop)
				return
			}
		}
	}
}

func (s *EventStream) Stop() {
	close(s.stop)
}

func (s *EventStream) errMessage(err error) []byte {
	p := httputils.NewErrorProblem(err, httputils.StatusCode(err))
	b, err := json.Marshal(p)
	if err != nil {
		b = []byte{}
	}
	return b
}
