package resource

import (
	"fmt"

	"github.com/nvellon/hal"
)

type Member struct {
	Address string
}

func NewMember(address string) *Member {
	return &Member{
		Address: address,
	}
}

func (m Member) GetMap() hal.Entry {
	return hal.Entry{
		"address": m.Address,
	}
}

func (m Member) Resource() *hal.Resource {
	r := hal.NewResource(m, m.LinkSelf())
	r.AddLink("proposals", hal.NewLink(URLProposals+"{?cursor,limit,reverse}", hal.LinkAttr{"templated": true}))
	return r
}

func (m Member) LinkSelf() string {
	return fmt.Sprintf("%s/%s", URLMembers, m.Address)
}
