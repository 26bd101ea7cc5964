package ledger

import (
	"strconv"
	"sync"

	logging "github.com/inconshreveable/log15"

	"conclave.io/conclave/lib/common"
	"conclave.io/conclave/lib/common/observer"
	"conclave.io/conclave/lib/errors"
	"conclave.io/conclave/lib/executor"
	"conclave.io/conclave/lib/membership"
	"conclave.io/conclave/lib/metrics"
	"conclave.io/conclave/lib/storage"
)

// VoteThreshold is the number of YES votes that triggers execution.
const VoteThreshold uint64 = 10

var log logging.Logger = logging.New("module", "ledger")

func SetLogging(level logging.Lvl, handler logging.Handler) {
	common.SetLogging(log, level, handler)
}

// VoteCast is the notification payload for a recorded vote.
type VoteCast struct {
	ProposalID uint64 `json:"proposal_id"`
	Source     string `json:"source"`
}

func (v VoteCast) Serialize() ([]byte, error) {
	return common.EncodeJSONValue(v)
}

// Ledger owns the ordered proposal collection and the vote/execution rule.
// Every operation runs as one storage transaction under a single mutex, so
// calls are linearized: a call either commits all of its effects or none of
// them. Observer triggers fire only after commit.
type Ledger struct {
	sync.Mutex

	st        *storage.LevelDBBackend
	registry  *membership.Registry
	ex        executor.Executor
	threshold uint64
}

func NewLedger(st *storage.LevelDBBackend, registry *membership.Registry, ex executor.Executor, threshold uint64) (*Ledger, error) {
	if threshold < 1 {
		return nil, errors.InvalidVoteThreshold
	}

	metrics.Ledger.SetMembers(registry.Len())

	return &Ledger{
		st:        st,
		registry:  registry,
		ex:        ex,
		threshold: threshold,
	}, nil
}

func (l *Ledger) Threshold() uint64 {
	return l.threshold
}

func (l *Ledger) Registry() *membership.Registry {
	return l.registry
}

// CreateProposal appends a new proposal; its id is the previous ledger
// length. Fails with `Unauthorized` for non-members.
func (l *Ledger) CreateProposal(caller, target string, payload []byte) (id uint64, err error) {
	l.Lock()
	defer l.Unlock()

	if !l.registry.IsMember(caller) {
		err = errors.Unauthorized.Clone().SetData("address", caller)
		return
	}

	var ts *storage.LevelDBBackend
	if ts, err = l.st.OpenTransaction(); err != nil {
		return
	}

	if id, err = GetProposalCount(ts); err != nil {
		ts.Discard()
		return
	}

	p := NewProposal(id, target, payload)
	if err = p.Save(ts); err != nil {
		ts.Discard()
		return
	}
	if err = setProposalCount(ts, id+1); err != nil {
		ts.Discard()
		return
	}

	if err = ts.Commit(); err != nil {
		ts.Discard()
		return
	}

	metrics.Ledger.SetProposals(id + 1)
	l.triggerProposalCreated(p)

	log.Debug("proposal created", "id", id, "proposer", caller, "target", target)

	return
}

// CastVote records `caller`'s vote on a proposal, correcting any prior vote
// first, then evaluates the execution trigger. When the vote makes the yes
// tally exactly equal to the threshold on an unexecuted proposal, the target
// action is invoked once; if it fails the whole call, vote included, is
// rolled back with `ExecutionFailed`.
func (l *Ledger) CastVote(caller string, proposalID uint64, supports bool) (err error) {
	l.Lock()
	defer l.Unlock()

	if !l.registry.IsMember(caller) {
		return errors.Unauthorized.Clone().SetData("address", caller)
	}

	var exists bool
	if exists, err = ExistsProposal(l.st, proposalID); err != nil {
		return
	} else if !exists {
		return errors.ProposalNotFound.Clone().SetData("id", proposalID)
	}

	var ts *storage.LevelDBBackend
	if ts, err = l.st.OpenTransaction(); err != nil {
		return
	}

	var p *Proposal
	if p, err = GetProposal(ts, proposalID); err != nil {
		ts.Discard()
		return
	}

	var current VoteState
	if current, err = GetVote(ts, proposalID, caller); err != nil {
		ts.Discard()
		return
	}

	// correction: undo the prior vote, then record the new one. Re-casting
	// the identical vote nets out on the tallies but still rewrites the
	// state and re-evaluates the trigger.
	switch current {
	case VoteYes:
		p.YesCount--
	case VoteNo:
		p.NoCount--
	}

	next := NewVoteState(supports)
	if supports {
		p.YesCount++
	} else {
		p.NoCount++
	}

	if err = setVote(ts, proposalID, caller, next); err != nil {
		ts.Discard()
		return
	}

	executed := false
	// the trigger is exact equality, never `>=`: a tally driven past the
	// threshold can no longer execute through this path.
	if p.YesCount == l.threshold && !p.Executed {
		if execErr := l.ex.Execute(p.Target, p.Payload); execErr != nil {
			ts.Discard()

			metrics.Ledger.AddExecutionFailure()
			log.Error("execution failed; vote rolled back",
				"id", proposalID, "voter", caller, "error", execErr)

			return errors.ExecutionFailed.Clone().
				SetData("id", proposalID).
				SetData("error", execErr.Error())
		}

		p.Executed = true
		executed = true
	}

	if err = p.Save(ts); err != nil {
		ts.Discard()
		return
	}

	if err = ts.Commit(); err != nil {
		ts.Discard()
		return
	}

	metrics.Ledger.AddVote()
	if executed {
		metrics.Ledger.AddExecution()
		log.Info("proposal executed", "id", proposalID, "target", p.Target)
	}

	l.triggerVoteCast(p, caller)

	log.Debug("vote cast", "id", proposalID, "voter", caller, "supports", supports,
		"yes", p.YesCount, "no", p.NoCount)

	return nil
}

// Proposal returns the stored proposal; `ProposalNotFound` for an unknown id.
func (l *Ledger) Proposal(id uint64) (*Proposal, error) {
	return GetProposal(l.st, id)
}

// Vote returns the recorded state for (proposal, address); `VoteAbsent` when
// the member never voted. Unknown proposal ids fail with `ProposalNotFound`.
func (l *Ledger) Vote(id uint64, address string) (VoteState, error) {
	if exists, err := ExistsProposal(l.st, id); err != nil {
		return VoteAbsent, err
	} else if !exists {
		return VoteAbsent, errors.ProposalNotFound.Clone().SetData("id", id)
	}

	return GetVote(l.st, id, address)
}

func (l *Ledger) Count() (uint64, error) {
	return GetProposalCount(l.st)
}

func (l *Ledger) Proposals(options storage.ListOptions) (func() (*Proposal, bool), func()) {
	return GetProposals(l.st, options)
}

func (l *Ledger) Votes(id uint64, options storage.ListOptions) (func() (*VoteRecord, bool), func()) {
	return GetVotes(l.st, id, options)
}

func (l *Ledger) triggerProposalCreated(p *Proposal) {
	id := strconv.FormatUint(p.ID, 10)

	observer.ResourceObserver.Trigger(
		observer.NewEvent(observer.ResourceProposal, observer.ConditionAll, "").String(), p)
	observer.ResourceObserver.Trigger(
		observer.NewEvent(observer.ResourceProposal, observer.ConditionProposal, id).String(), p)
}

func (l *Ledger) triggerVoteCast(p *Proposal, caller string) {
	v := VoteCast{ProposalID: p.ID, Source: caller}
	id := strconv.FormatUint(p.ID, 10)

	observer.ResourceObserver.Trigger(
		observer.NewEvent(observer.ResourceVote, observer.ConditionAll, "").String(), v)
	observer.ResourceObserver.Trigger(
		observer.NewEvent(observer.ResourceVote, observer.ConditionProposal, id).String(), v)
	observer.ResourceObserver.Trigger(
		observer.NewEvent(observer.ResourceVote, observer.ConditionSource, caller).String(), v)

	// the proposal's tallies changed, notify its watchers too
	observer.ResourceObserver.Trigger(
		observer.NewEvent(observer.ResourceProposal, observer.ConditionProposal, id).String(), p)
}
