// Package code defines the business status codes shared by the API server
// and its clients. Every response envelope carries one of these codes; the
// HTTP status is derived from the code object so handlers never hardcode it.
package code

import (
	"fmt"
	"net/http"
)

type Code struct {
	code       int
	httpStatus int
	status     bool
	msg        string

	data        interface{}
	haveData    bool
	details     []string
	haveDetails bool
}

var codes = map[int]string{}

// NewError registers an error code. Duplicate registration is a programmer
// error and panics at init time.
func NewError(code int, httpStatus int, msg string) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("code %d already exists, pick another one", code))
	}
	codes[code] = msg
	return &Code{code: code, httpStatus: httpStatus, status: false, msg: msg}
}

// NewSuss registers a success code.
func NewSuss(code int, httpStatus int, msg string) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("code %d already exists, pick another one", code))
	}
	codes[code] = msg
	return &Code{code: code, httpStatus: httpStatus, status: true, msg: msg}
}

// Clone returns a copy without data or details, so the registered globals
// are never mutated by a request.
func (e *Code) Clone() *Code {
	return &Code{
		code:       e.code,
		httpStatus: e.httpStatus,
		status:     e.status,
		msg:        e.msg,
	}
}

func (e *Code) Error() string {
	return e.msg
}

func (e *Code) Code() int {
	return e.code
}

func (e *Code) StatusCode() int {
	if e.httpStatus == 0 {
		return http.StatusOK
	}
	return e.httpStatus
}

func (e *Code) Status() bool {
	return e.status
}

func (e *Code) Msg() string {
	return e.msg
}

func (e *Code) Data() interface{} {
	return e.data
}

func (e *Code) HaveData() bool {
	return e.haveData
}

func (e *Code) Details() []string {
	return e.details
}

func (e *Code) HaveDetails() bool {
	return e.haveDetails
}

// WithData clones the code and attaches payload data.
func (e *Code) WithData(data interface{}) *Code {
	c := e.Clone()
	c.data = data
	c.haveData = true
	return c
}

// WithDetails clones the code and attaches detail strings.
func (e *Code) WithDetails(details ...string) *Code {
	c := e.Clone()
	c.details = details
	c.haveDetails = true
	return c
}
