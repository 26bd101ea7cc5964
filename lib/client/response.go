package client

import (
	"encoding/base64"
	"encoding/json"
)

type Problem struct {
	Type     string                     `json:"type"`
	Title    string                     `json:"title"`
	Status   int                        `json:"status"`
	Detail   string                     `json:"detail,omitempty"`
	Instance string                     `json:"instance,omitempty"`
	Extras   map[string]json.RawMessage `json:"extras,omitempty"`
}

type Link struct {
	Href      string `json:"href"`
	Templated bool   `json:"templated,omitempty"`
}

type Proposal struct {
	Links struct {
		Self  Link `json:"self"`
		Votes Link `json:"votes"`
	} `json:"_links"`

	ID       uint64 `json:"id"`
	Target   string `json:"target"`
	Payload  string `json:"payload"`
	Executed bool   `json:"executed"`
	YesCount uint64 `json:"yes_count"`
	NoCount  uint64 `json:"no_count"`
}

// DecodedPayload decodes the base64 `payload` field.
func (p Proposal) DecodedPayload() ([]byte, error) {
	return base64.StdEncoding.DecodeString(p.Payload)
}

type ProposalsPage struct {
	Links struct {
		Self Link `json:"self"`
		Next Link `json:"next"`
		Prev Link `json:"prev"`
	} `json:"_links"`
	Embedded struct {
		Records []Proposal `json:"records"`
	} `json:"_embedded"`
}

type Vote struct {
	Links struct {
		Self     Link `json:"self"`
		Proposal Link `json:"proposal"`
	} `json:"_links"`

	ProposalID uint64 `json:"proposal_id"`
	Address    string `json:"address"`
	State      string `json:"state"`
}

type VotesPage struct {
	Links struct {
		Self Link `json:"self"`
		Next Link `json:"next"`
		Prev Link `json:"prev"`
	} `json:"_links"`
	Embedded struct {
		Records []Vote `json:"records"`
	} `json:"_embedded"`
}

type Member struct {
	Links struct {
		Self      Link `json:"self"`
		Proposals Link `json:"proposals"`
	} `json:"_links"`

	Address string `json:"address"`
}

type MembersPage struct {
	Links struct {
		Self Link `json:"self"`
	} `json:"_links"`
	Embedded struct {
		Records []Member `json:"records"`
	} `json:"_embedded"`
}
