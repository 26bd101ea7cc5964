package client

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	neturl "net/url"
	"strconv"
	"strings"

	"github.com/sethgrid/pester"

	"conclave.io/conclave/lib/common"
)

const (
	UrlPrefixForAPIV1 = "/api/v1"

	UrlProposals       = "/proposals"
	UrlProposalByID    = "/proposals/{id}"
	UrlProposalVotes   = "/proposals/{id}/votes"
	UrlVoteByAddress   = "/proposals/{id}/votes/{address}"
	UrlMembers         = "/members"
	UrlMemberByAddress = "/members/{address}"
)

type QueryKey string

func (qk QueryKey) String() string {
	return string(qk)
}

const (
	QueryLimit   QueryKey = "limit"
	QueryReverse QueryKey = "reverse"
	QueryCursor  QueryKey = "cursor"
)

type Q struct {
	Key   QueryKey
	Value string
}

type Queries []Q

func (qs Queries) toQueryString() string {
	urlValues := neturl.Values{}
	if len(qs) == 0 {
		return ""
	}
	for _, q := range qs {
		switch q.Key {
		case QueryLimit:
			urlValues.Add(QueryLimit.String(), q.Value)
		case QueryReverse:
			urlValues.Add(QueryReverse.String(), q.Value)
		case QueryCursor:
			urlValues.Add(QueryCursor.String(), q.Value)
		}
	}
	return "?" + urlValues.Encode()
}

type Client struct {
	URL string

	// reads go through the retrying client; writes get a single attempt
	HTTP *common.HTTP2Client
	post *common.HTTP2Client
}

func NewClient(url string) *Client {
	retrying, err := common.NewPersistentHTTP2Client(0, 0, true, &common.RetrySetting{
		MaxRetries:  3,
		Concurrency: 1,
		Backoff:     pester.ExponentialBackoff,
	})
	if err != nil {
		panic(err)
	}
	post, err := common.NewHTTP2Client(0, 0, true)
	if err != nil {
		panic(err)
	}
	return &Client{
		URL:  url,
		HTTP: retrying,
		post: post,
	}
}

func (c *Client) toResponse(resp *http.Response, response interface{}) (err error) {
	defer resp.Body.Close()
	decoder := json.NewDecoder(resp.Body)

	if !(resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices) {
		var p Problem
		err = decoder.Decode(&p)
		if err != nil {
			return
		}
		return Error{Problem: p}
	}

	err = decoder.Decode(&response)
	if err != nil {
		return
	}
	return
}

func (c *Client) Get(path string, headers http.Header) (response *http.Response, err error) {
	url := c.URL + UrlPrefixForAPIV1 + path
	return c.HTTP.Get(url, headers)
}

func (c *Client) Post(path string, body []byte, headers http.Header) (response *http.Response, err error) {
	url := c.URL + UrlPrefixForAPIV1 + path
	return c.post.Post(url, body, headers)
}

func (c *Client) LoadProposal(id uint64, queries ...Q) (proposal Proposal, err error) {
	url := strings.Replace(UrlProposalByID, "{id}", strconv.FormatUint(id, 10), -1)
	url += Queries(queries).toQueryString()
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	resp, err := c.Get(url, headers)
	if err != nil {
		return
	}
	err = c.toResponse(resp, &proposal)
	return
}

func (c *Client) LoadProposals(queries ...Q) (pPage ProposalsPage, err error) {
	url := UrlProposals
	url += Queries(queries).toQueryString()
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	resp, err := c.Get(url, headers)
	if err != nil {
		return
	}
	err = c.toResponse(resp, &pPage)
	return
}

func (c *Client) LoadVotes(id uint64, queries ...Q) (vPage VotesPage, err error) {
	url := strings.Replace(UrlProposalVotes, "{id}", strconv.FormatUint(id, 10), -1)
	url += Queries(queries).toQueryString()
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	resp, err := c.Get(url, headers)
	if err != nil {
		return
	}
	err = c.toResponse(resp, &vPage)
	return
}

func (c *Client) LoadVote(id uint64, address string) (vote Vote, err error) {
	url := strings.Replace(UrlVoteByAddress, "{id}", strconv.FormatUint(id, 10), -1)
	url = strings.Replace(url, "{address}", address, -1)
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	resp, err := c.Get(url, headers)
	if err != nil {
		return
	}
	err = c.toResponse(resp, &vote)
	return
}

func (c *Client) LoadMembers() (mPage MembersPage, err error) {
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	resp, err := c.Get(UrlMembers, headers)
	if err != nil {
		return
	}
	err = c.toResponse(resp, &mPage)
	return
}

func (c *Client) LoadMember(address string) (member Member, err error) {
	url := strings.Replace(UrlMemberByAddress, "{address}", address, -1)
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	resp, err := c.Get(url, headers)
	if err != nil {
		return
	}
	err = c.toResponse(resp, &member)
	return
}

type proposalPostBody struct {
	Source  string `json:"source"`
	Target  string `json:"target"`
	Payload string `json:"payload"`
}

func (c *Client) CreateProposal(source, target string, payload []byte) (proposal Proposal, err error) {
	body, err := json.Marshal(proposalPostBody{
		Source:  source,
		Target:  target,
		Payload: base64.StdEncoding.EncodeToString(payload),
	})
	if err != nil {
		return
	}
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	resp, err := c.Post(UrlProposals, body, headers)
	if err != nil {
		return
	}
	err = c.toResponse(resp, &proposal)
	return
}

type votePostBody struct {
	Source   string `json:"source"`
	Supports bool   `json:"supports"`
}

func (c *Client) CastVote(id uint64, source string, supports bool) (vote Vote, err error) {
	body, err := json.Marshal(votePostBody{
		Source:   source,
		Supports: supports,
	})
	if err != nil {
		return
	}
	url := strings.Replace(UrlProposalVotes, "{id}", strconv.FormatUint(id, 10), -1)
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	resp, err := c.Post(url, body, headers)
	if err != nil {
		return
	}
	err = c.toResponse(resp, &vote)
	return
}

func (c *Client) Stream(ctx context.Context, theUrl string, cursor *string, handler func(data []byte) error) (err error) {
	if cursor != nil {
		query := neturl.Values{}
		query.Set("cursor", string(*cursor))
		theUrl += "?" + query.Encode()
	}
	var headers = http.Header{}
	headers.Set("Accept", "text/event-stream")
	resp, err := c.Get(theUrl, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return err
		}

		if len(line) == 0 {
			continue
		}
		if err := handler(line); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
}

func (c *Client) StreamProposals(ctx context.Context, cursor *string, handler func(Proposal)) (err error) {
	url := UrlProposals
	handlerFunc := func(b []byte) (err error) {
		var v Proposal
		err = json.Unmarshal(b, &v)
		if err != nil {
			return err
		}
		handler(v)
		return nil
	}
	return c.Stream(ctx, url, cursor, handlerFunc)
}

func (c *Client) StreamProposal(ctx context.Context, id uint64, handler func(Proposal)) (err error) {
	url := strings.Replace(UrlProposalByID, "{id}", strconv.FormatUint(id, 10), -1)
	handlerFunc := func(b []byte) (err error) {
		var v Proposal
		err = json.Unmarshal(b, &v)
		if err != nil {
			return err
		}
		handler(v)
		return nil
	}
	return c.Stream(ctx, url, nil, handlerFunc)
}

func (c *Client) StreamVotesByProposal(ctx context.Context, id uint64, handler func(Vote)) (err error) {
	url := strings.Replace(UrlProposalVotes, "{id}", strconv.FormatUint(id, 10), -1)
	handlerFunc := func(b []byte) (err error) {
		var v Vote
		err = json.Unmarshal(b, &v)
		if err != nil {
			return err
		}
		handler(v)
		return nil
	}
	return c.Stream(ctx, url, nil, handlerFunc)
}
