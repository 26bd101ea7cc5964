package ledger

import (
	"fmt"
	"strings"

	"conclave.io/conclave/lib/common"
	"conclave.io/conclave/lib/errors"
	"conclave.io/conclave/lib/storage"
)

// Proposal is one recorded request to perform an action. The storage should
// support,
//  * find by `ID`
//  * get list by created order
//
// models
//  * 'sequence'
// 	- 'pp-seq-<zero-padded ID>': `Proposal`
//  * 'count'
// 	- 'pp-count': number of proposals
//  * 'vote'
// 	- 'pv-<zero-padded ID>-<address>': `VoteState`

const ProposalPrefixSeq string = "pp-seq-"
const ProposalCountKey string = "pp-count"
const VotePrefix string = "pv-"

type Proposal struct {
	ID       uint64 `json:"id"`
	Target   string `json:"target"`
	Payload  []byte `json:"payload"`
	Executed bool   `json:"executed"`
	YesCount uint64 `json:"yes_count"`
	NoCount  uint64 `json:"no_count"`
}

func NewProposal(id uint64, target string, payload []byte) *Proposal {
	return &Proposal{
		ID:      id,
		Target:  target,
		Payload: payload,
	}
}

func (p *Proposal) String() string {
	return string(common.MustMarshalJSON(p))
}

func (p *Proposal) Serialize() (encoded []byte, err error) {
	encoded, err = common.EncodeJSONValue(p)
	return
}

func (p *Proposal) Deserialize(encoded []byte) (err error) {
	return common.DecodeJSONValue(encoded, p)
}

func (p *Proposal) Save(st *storage.LevelDBBackend) (err error) {
	key := GetProposalKey(p.ID)

	var exists bool
	if exists, err = st.Has(key); err != nil {
		return
	}

	if exists {
		err = st.Set(key, p)
	} else {
		err = st.New(key, p)
	}

	return
}

func GetProposalKey(id uint64) string {
	return fmt.Sprintf("%s%020d", ProposalPrefixSeq, id)
}

func GetVoteKey(id uint64, address string) string {
	return fmt.Sprintf("%s%020d-%s", VotePrefix, id, address)
}

func ExistsProposal(st *storage.LevelDBBackend, id uint64) (bool, error) {
	return st.Has(GetProposalKey(id))
}

func GetProposal(st *storage.LevelDBBackend, id uint64) (p *Proposal, err error) {
	if err = st.Get(GetProposalKey(id), &p); err != nil {
		if err == errors.StorageRecordDoesNotExist {
			err = errors.ProposalNotFound
		}
		return
	}

	return
}

// GetProposalCount is the number of proposals ever created; it is also the
// id the next proposal will take.
func GetProposalCount(st *storage.LevelDBBackend) (count uint64, err error) {
	var exists bool
	if exists, err = st.Has(ProposalCountKey); err != nil || !exists {
		return 0, err
	}

	err = st.Get(ProposalCountKey, &count)
	return
}

func setProposalCount(st *storage.LevelDBBackend, count uint64) (err error) {
	var exists bool
	if exists, err = st.Has(ProposalCountKey); err != nil {
		return
	}

	if exists {
		err = st.Set(ProposalCountKey, count)
	} else {
		err = st.New(ProposalCountKey, count)
	}

	return
}

// GetVote never fails on a missing record; an unknown (proposal, address)
// pair is `VoteAbsent`.
func GetVote(st *storage.LevelDBBackend, id uint64, address string) (vs VoteState, err error) {
	var exists bool
	if exists, err = st.Has(GetVoteKey(id, address)); err != nil || !exists {
		return VoteAbsent, err
	}

	err = st.Get(GetVoteKey(id, address), &vs)
	return
}

func setVote(st *storage.LevelDBBackend, id uint64, address string, vs VoteState) (err error) {
	key := GetVoteKey(id, address)

	var exists bool
	if exists, err = st.Has(key); err != nil {
		return
	}

	if exists {
		err = st.Set(key, vs)
	} else {
		err = st.New(key, vs)
	}

	return
}

// VoteRecord pairs a recorded vote with the member who cast it; it is the
// item yielded when iterating a proposal's votes.
type VoteRecord struct {
	Address string
	State   VoteState
}

// GetVotePrefix is the key prefix shared by every recorded vote of one
// proposal.
func GetVotePrefix(id uint64) string {
	return fmt.Sprintf("%s%020d-", VotePrefix, id)
}

func GetVotes(st *storage.LevelDBBackend, id uint64, options storage.ListOptions) (func() (*VoteRecord, bool), func()) {
	prefix := GetVotePrefix(id)
	iterFunc, closeFunc := st.GetIterator(prefix, options)

	return (func() (*VoteRecord, bool) {
			item, hasNext := iterFunc()
			if !hasNext {
				return nil, false
			}

			var vs VoteState
			common.MustUnmarshalJSON(item.Value, &vs)
			address := strings.TrimPrefix(string(item.Key), prefix)
			return &VoteRecord{Address: address, State: vs}, hasNext
		}), (func() {
			closeFunc()
		})
}

func GetProposals(st *storage.LevelDBBackend, options storage.ListOptions) (func() (*Proposal, bool), func()) {
	iterFunc, closeFunc := st.GetIterator(ProposalPrefixSeq, options)

	return (func() (*Proposal, bool) {
			item, hasNext := iterFunc()
			if !hasNext {
				return nil, false
			}

			var p Proposal
			common.MustUnmarshalJSON(item.Value, &p)
			return &p, hasNext
		}), (func() {
			closeFunc()
		})
}
