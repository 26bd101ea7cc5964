package httputils

import (
	"net/http"

	"conclave.io/conclave/lib/errors"
)

// IsEventStream checks request header accept is text/event-stream
func IsEventStream(r *http.Request) bool {
	if r.Header.Get("Accept") == "text/event-stream" {
		return true
	}
	return false
}

var (
	ErrorsToStatus = map[uint]int{
		errors.Unauthorized.Code:               http.StatusForbidden,
		errors.ProposalNotFound.Code:           http.StatusNotFound,
		errors.ExecutionFailed.Code:            http.StatusInternalServerError,
		errors.StorageRecordDoesNotExist.Code:  http.StatusNotFound,
		errors.StorageRecordAlreadyExists.Code: http.StatusConflict,
		errors.RegistryAlreadyExists.Code:      http.StatusConflict,
		errors.RegistryDoesNotExist.Code:       http.StatusInternalServerError,
		errors.InvalidMemberAddress.Code:       http.StatusBadRequest,
		errors.InvalidVoteThreshold.Code:       http.StatusBadRequest,
		errors.MemberNotFound.Code:             http.StatusNotFound,
		errors.BadRequestParameter.Code:        http.StatusBadRequest,
		errors.InvalidQueryString.Code:         http.StatusBadRequest,
		errors.PageQueryLimitMaxExceed.Code:    http.StatusBadRequest,
		errors.InvalidContentType.Code:         http.StatusBadRequest,
		errors.NotImplemented.Code:             http.StatusNotImplemented,
	}
)

func StatusCode(err error) int {
	if e, ok := err.(*errors.Error); ok {
		if status, ok := ErrorsToStatus[e.Code]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}
