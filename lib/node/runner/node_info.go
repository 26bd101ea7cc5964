package runner

import (
	"conclave.io/conclave/lib/common"
	"conclave.io/conclave/lib/node"
	"conclave.io/conclave/lib/version"
)

func NewNodeInfo(nr *NodeRunner) node.NodeInfo {
	localNode := nr.Node()

	var endpoint *common.Endpoint
	if localNode.PublishEndpoint() != nil {
		endpoint = localNode.PublishEndpoint()
	}

	nv := node.NodeVersion{
		Version:   version.Version,
		GitCommit: version.GitCommit,
		GitState:  version.GitState,
		BuildDate: version.BuildDate,
	}

	nd := node.NodeInfoNode{
		Version:  nv,
		Started:  common.NowISO8601(),
		Alias:    localNode.Alias(),
		Address:  localNode.Address(),
		Endpoint: endpoint,
	}

	policy := node.NodePolicy{
		VoteThreshold: nr.Ledger().Threshold(),
		Members:       nr.Ledger().Registry().Len(),
	}

	return node.NodeInfo{
		Node:   nd,
		Policy: policy,
	}
}
