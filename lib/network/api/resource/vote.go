package resource

import (
	"strconv"
	"strings"

	"github.com/nvellon/hal"

	"conclave.io/conclave/lib/ledger"
)

type Vote struct {
	ProposalID uint64
	Address    string
	State      ledger.VoteState
}

func NewVote(proposalID uint64, address string, state ledger.VoteState) *Vote {
	v := &Vote{
		ProposalID: proposalID,
		Address:    address,
		State:      state,
	}
	return v
}

func (v Vote) GetMap() hal.Entry {
	return hal.Entry{
		"proposal_id": v.ProposalID,
		"address":     v.Address,
		"state":       string(v.State),
	}
}

func (v Vote) Resource() *hal.Resource {
	id := strconv.FormatUint(v.ProposalID, 10)

	r := hal.NewResource(v, v.LinkSelf())
	r.AddLink("proposal", hal.NewLink(strings.Replace(URLProposalByID, "{id}", id, -1)))
	return r
}

func (v Vote) LinkSelf() string {
	id := strconv.FormatUint(v.ProposalID, 10)
	link := strings.Replace(URLVoteByAddress, "{id}", id, -1)
	return strings.Replace(link, "{address}", v.Address, -1)
}
