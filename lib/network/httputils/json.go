package httputils

import (
	"encoding/json"
	"net/http"

	"github.com/nvellon/hal"

	"conclave.io/conclave/lib/errors"
)

type HALResource interface {
	Resource() *hal.Resource
}

func NewErrorProblem(err error, status int) errors.Problem {
	if e, ok := err.(*errors.Error); ok {
		return errors.NewProblemFromError(e, status)
	}
	return errors.NewDetailedStatusProblem(status, err.Error())
}

// WriteJSON writes the value v to the http response as json encoding
func WriteJSON(w http.ResponseWriter, code int, v interface{}) error {
	if h, ok := v.(HALResource); ok {
		w.Header().Set("Content-Type", "application/hal+json")
		v = h.Resource()
	} else if e, ok := v.(error); ok {
		w.Header().Set("Content-Type", "application/problem+json")
		v = NewErrorProblem(e, code)
	} else {
		w.Header().Set("Content-Type", "application/json")
	}

	w.WriteHeader(code)

	bs, err := json.Marshal(v)
	if err != nil {
		return err
	}

	if _, err := w.Write(bs); err != nil {
		return err
	}

	return nil
}

// WriteJSONError writes err as a problem document, with the status taken
// from the error code mapping.
func WriteJSONError(w http.ResponseWriter, err error) {
	code := StatusCode(err)
	if werr := WriteJSON(w, code, err); werr != nil {
		http.Error(w, http.StatusText(code), code)
	}
}

func MustWriteJSON(w http.ResponseWriter, code int, v interface{}) {
	if err := WriteJSON(w, code, v); err != nil {
		WriteJSONError(w, err)
	}
}
