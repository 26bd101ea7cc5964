package resource

const (
	APIVersionV1 = "/v1"
	APIPrefix    = "/api"

	URLProposals     = APIPrefix + APIVersionV1 + "/proposals"
	URLProposalByID  = APIPrefix + APIVersionV1 + "/proposals/{id}"
	URLProposalVotes = APIPrefix + APIVersionV1 + "/proposals/{id}/votes"
	URLVoteByAddress = APIPrefix + APIVersionV1 + "/proposals/{id}/votes/{address}"
	URLMembers       = APIPrefix + APIVersionV1 + "/members"
	URLSubscribe     = APIPrefix + APIVersionV1 + "/subscribe"
)
