package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"conclave.io/conclave/lib/errors"
	"conclave.io/conclave/lib/network/httputils"
	"conclave.io/conclave/lib/network/api/resource"
)

func (api NetworkHandlerAPI) GetMembersHandler(w http.ResponseWriter, r *http.Request) {
	var rs []resource.Resource
	for _, address := range api.ledger.Registry().Members {
		rs = append(rs, resource.NewMember(address))
	}

	httputils.MustWriteJSON(w, 200, resource.NewResourceList(rs, resource.URLMembers, "", ""))
}

func (api NetworkHandlerAPI) GetMemberHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	address := vars["address"]

	if !api.ledger.Registry().IsMember(address) {
		httputils.WriteJSONError(w, errors.MemberNotFound)
		return
	}

	httputils.MustWriteJSON(w, 200, resource.NewMember(address))
}
