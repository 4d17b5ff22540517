package astigesture

import (
	"encoding/json"
	"net/http"

	"github.com/asticode/go-astilog"
	"github.com/pkg/errors"
)

// Error represents an API error
type Error struct {
	Message string `json:"message"`
}

// WriteHTTPError writes an API error
func WriteHTTPError(rw http.ResponseWriter, code int, err error) {
	rw.WriteHeader(code)
	if code >= http.StatusInternalServerError {
		astilog.Error(err)
	} else {
		astilog.Debug(err)
	}
	if err := json.NewEncoder(rw).Encode(Error{Message: err.Error()}); err != nil {
		astilog.Error(errors.Wrap(err, "astigesture: marshaling failed"))
	}
}

// WriteHTTPData writes API data
func WriteHTTPData(rw http.ResponseWriter, data interface{}) {
	if err := json.NewEncoder(rw).Encode(data); err != nil {
		WriteHTTPError(rw, http.StatusInternalServerError, errors.Wrap(err, "astigesture: json encoding failed"))
		return
	}
}
