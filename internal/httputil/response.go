package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/roomcheck/roomcheck/internal/fault"
)

type ErrorBody struct {
	Error string     `json:"error"`
	Kind  fault.Kind `json:"kind,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorBody{Error: message})
}

// WriteFault maps an error's kind to an HTTP status. Unclassified errors are
// treated as upstream failures.
func WriteFault(w http.ResponseWriter, err error) {
	kind := fault.KindOf(err)
	WriteJSON(w, statusForKind(kind), ErrorBody{Error: err.Error(), Kind: kind})
}

func statusForKind(kind fault.Kind) int {
	switch kind {
	case fault.KindValidation:
		return http.StatusBadRequest
	case fault.KindConflict:
		return http.StatusConflict
	case fault.KindNotFound:
		return http.StatusNotFound
	case fault.KindParse, fault.KindExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
