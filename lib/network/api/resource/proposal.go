package resource

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/nvellon/hal"

	"conclave.io/conclave/lib/common"
	"conclave.io/conclave/lib/ledger"
)

type Proposal struct {
	p *ledger.Proposal
}

func NewProposal(p *ledger.Proposal) *Proposal {
	return &Proposal{
		p: p,
	}
}

func (p Proposal) GetMap() hal.Entry {
	return hal.Entry{
		"id":        p.p.ID,
		"target":    p.p.Target,
		"payload":   base64.StdEncoding.EncodeToString(p.p.Payload),
		"executed":  p.p.Executed,
		"yes_count": p.p.YesCount,
		"no_count":  p.p.NoCount,
	}
}

func (p Proposal) Resource() *hal.Resource {
	id := strconv.FormatUint(p.p.ID, 10)

	r := hal.NewResource(p, p.LinkSelf())
	r.AddLink("votes", hal.NewLink(strings.Replace(URLProposalVotes, "{id}", id, -1)+"{?cursor,limit,reverse}", hal.LinkAttr{"templated": true}))
	return r
}

func (p Proposal) LinkSelf() string {
	id := strconv.FormatUint(p.p.ID, 10)
	return strings.Replace(URLProposalByID, "{id}", id, -1)
}

func (p Proposal) MarshalJSON() ([]byte, error) {
	r := p.Resource()
	return common.JSONMarshalWithoutEscapeHTML(r.GetMap())
}
