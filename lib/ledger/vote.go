package ledger

// VoteState is the recorded position of one member on one proposal. Every
// (proposal, member) pair is implicitly `VoteAbsent` until the member votes.
type VoteState string

const (
	VoteAbsent VoteState = "ABSENT"
	VoteYes    VoteState = "YES"
	VoteNo     VoteState = "NO"
)

func (v VoteState) IsRecorded() bool {
	return v == VoteYes || v == VoteNo
}

func NewVoteState(supports bool) VoteState {
	if supports {
		return VoteYes
	}
	return VoteNo
}
