package observer

import (
	"github.com/GianlucaGuarini/go-observable"
)

// ResourceObserver fires when a proposal is appended to the ledger or a
// vote is recorded. It is triggered only after the ledger's storage
// transaction commits; a rolled-back call initiates no events.
var ResourceObserver = observable.New()

const (
	ResourceProposal = "pp"
	ResourceVote     = "vt"

	ConditionAll      = "*"
	ConditionProposal = "proposal"
	ConditionSource   = "source"
)

type Event struct {
	Resource  string `json:"resource"`
	Condition string `json:"condition"`
	Id        string `json:"id"`
}

func NewEvent(resource, condition, id string) Event {
	return Event{
		Resource:  resource,
		Condition: condition,
		Id:        id,
	}
}

func (e Event) String() string {
	toStr := e.Resource + "-"
	if e.Condition == ConditionAll {
		toStr += e.Condition
	} else {
		toStr += e.Condition + "="
		toStr += e.Id
	}
	return toStr
}

type Subscribe struct {
	Events []Event `json:"events"`
}

func NewSubscribe(events ...Event) Subscribe {
	s := Subscribe{}
	for _, e := range events {
		s.Events = append(s.Events, e)
	}
	return s
}

func (s Subscribe) String() string {
	toStr := ""
	for i, e := range s.Events {
		toStr += e.String()
		if i != len(s.Events)-1 {
			toStr += "&"
		}
	}
	return toStr
}
