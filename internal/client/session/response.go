package session

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/docdb/internal/common"
)

// Response is a raw server response.
type Response struct {
	Header     http.Header
	Method     string
	URL        string
	Body       []byte
	StatusCode int
}

// APIError is the error envelope the server puts in JSON bodies.
type APIError struct {
	ErrorMessage string `json:"errorMessage"`
	ErrorNum     int    `json:"errorNum"`
	Code         int    `json:"code"`
	Error        bool   `json:"error"`
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return r.wrap(fmt.Errorf("%w: %v", common.ErrDecoding, err))
	}
	return nil
}

// APIError returns the error envelope, if the body is a JSON object.
func (r *Response) APIError() (APIError, bool) {
	var e APIError
	if err := json.Unmarshal(r.Body, &e); err != nil {
		return APIError{}, false
	}
	return e, true
}

// Conflict reports whether the body carries the write-conflict error number.
func (r *Response) Conflict() bool {
	e, ok := r.APIError()
	return ok && e.ErrorNum == common.ConflictErrorNum
}

// Err returns nil for successful responses and a *common.RequestError
// otherwise. A conflicting response maps to common.ErrConflictExhausted,
// a 401 to common.ErrAuthorization and anything else to common.ErrServer.
func (r *Response) Err() error {
	e, _ := r.APIError()
	if r.StatusCode < http.StatusBadRequest && !e.Error {
		return nil
	}

	kind := common.ErrServer
	switch {
	case e.ErrorNum == common.ConflictErrorNum:
		kind = common.ErrConflictExhausted
	case r.StatusCode == http.StatusUnauthorized:
		kind = common.ErrAuthorization
	}

	msg := e.ErrorMessage
	if msg == "" {
		msg = http.StatusText(r.StatusCode)
	}
	if e.ErrorNum != 0 {
		return r.wrap(fmt.Errorf("%w: %s (errorNum %d)", kind, msg, e.ErrorNum))
	}
	return r.wrap(fmt.Errorf("%w: %s", kind, msg))
}

func (r *Response) wrap(err error) *common.RequestError {
	return &common.RequestError{
		Method:     r.Method,
		URL:        r.URL,
		StatusCode: r.StatusCode,
		Body:       r.Body,
		Err:        err,
	}
}
