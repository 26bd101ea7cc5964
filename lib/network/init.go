package network

import (
	logging "github.com/inconshreveable/log15"

	"conclave.io/conclave/lib/common"
)

var log logging.Logger = logging.New("module", "network")

func SetLogging(level logging.Lvl, handler logging.Handler) {
	common.SetLogging(log, level, handler)
}

func init() {
	SetLogging(logging.LvlCrit, common.DefaultLogHandler)
}
