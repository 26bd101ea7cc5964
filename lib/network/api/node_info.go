package api

import (
	"net/http"

	"conclave.io/conclave/lib/network/httputils"
)

func (api NetworkHandlerAPI) GetNodeInfoHandler(w http.ResponseWriter, r *http.Request) {
	httputils.MustWriteJSON(w, 200, api.nodeInfo)
}
