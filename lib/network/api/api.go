package api

import (
	"fmt"

	"conclave.io/conclave/lib/ledger"
	"conclave.io/conclave/lib/node"
	"conclave.io/conclave/lib/storage"
)

const APIVersionV1 = "v1"

// API Endpoint patterns
const (
	GetProposalsHandlerPattern = "/proposals"
	GetProposalHandlerPattern  = "/proposals/{id}"
	PostProposalPattern        = "/proposals"
	GetVotesHandlerPattern     = "/proposals/{id}/votes"
	GetVoteHandlerPattern      = "/proposals/{id}/votes/{address}"
	PostVotePattern            = "/proposals/{id}/votes"
	GetMembersHandlerPattern   = "/members"
	GetMemberHandlerPattern    = "/members/{address}"
	GetNodeInfoPattern         = "/"
	PostSubscribePattern       = "/subscribe"
)

type NetworkHandlerAPI struct {
	localNode *node.LocalNode
	ledger    *ledger.Ledger
	storage   *storage.LevelDBBackend
	urlPrefix string
	version   string
	nodeInfo  node.NodeInfo
}

func NewNetworkHandlerAPI(localNode *node.LocalNode, lg *ledger.Ledger, st *storage.LevelDBBackend, urlPrefix string, nodeInfo node.NodeInfo) *NetworkHandlerAPI {
	return &NetworkHandlerAPI{
		localNode: localNode,
		ledger:    lg,
		storage:   st,
		urlPrefix: urlPrefix,
		version:   APIVersionV1,
		nodeInfo:  nodeInfo,
	}
}

func (api NetworkHandlerAPI) HandlerURLPattern(pattern string) string {
	return fmt.Sprintf("%s/%s%s", api.urlPrefix, api.version, pattern)
}
