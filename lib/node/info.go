package node

import (
	"encoding/json"

	"conclave.io/conclave/lib/common"
)

type NodeInfo struct {
	Node   NodeInfoNode `json:"node"`
	Policy NodePolicy   `json:"policy"`
}

type NodeInfoNode struct {
	Version  NodeVersion      `json:"version"`
	Started  string           `json:"started"`
	Alias    string           `json:"alias"`
	Address  string           `json:"address"`
	Endpoint *common.Endpoint `json:"endpoint"`
}

type NodePolicy struct {
	VoteThreshold uint64 `json:"vote-threshold"` // yes votes required to execute a proposal
	Members       int    `json:"members"`        // size of the member registry
}

type NodeVersion struct {
	Version   string `json:"version"`
	GitCommit string `json:"git-commit"`
	GitState  string `json:"git-state"`
	BuildDate string `json:"build-date"`
}

func NewNodeInfoFromJSON(b []byte) (nodeInfo NodeInfo, err error) {
	err = json.Unmarshal(b, &nodeInfo)
	return
}
