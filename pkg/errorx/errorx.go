// Package errorx attaches registered business codes to errors.
package errorx

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// Coder defines an error code with its HTTP status and user-facing message.
type Coder interface {
	// Code returns the business code.
	Code() int
	// HTTPStatus returns the status the code maps to.
	HTTPStatus() int
	// String returns the external message.
	String() string
	// Reference returns documentation for the code, may be empty.
	Reference() string
}

// ErrUnknown is the code reported for errors without a registered coder.
const ErrUnknown = 1

type defaultCoder struct {
	code int
	http int
	msg  string
}

func (c defaultCoder) Code() int         { return c.code }
func (c defaultCoder) HTTPStatus() int   { return c.http }
func (c defaultCoder) String() string    { return c.msg }
func (c defaultCoder) Reference() string { return "" }

var unknownCoder Coder = defaultCoder{code: ErrUnknown, http: http.StatusInternalServerError, msg: "An internal server error occurred"}

var (
	codes   = map[int]Coder{}
	codeMux sync.RWMutex
)

// Register registers a coder, replacing any existing one with the same code.
func Register(coder Coder) error {
	if coder.Code() == ErrUnknown {
		return fmt.Errorf("code %d is reserved", ErrUnknown)
	}
	codeMux.Lock()
	defer codeMux.Unlock()
	codes[coder.Code()] = coder
	return nil
}

// MustRegister registers a coder and panics when the code already exists.
func MustRegister(coder Coder) {
	codeMux.Lock()
	defer codeMux.Unlock()
	if coder.Code() == ErrUnknown {
		panic(fmt.Sprintf("code %d is reserved", ErrUnknown))
	}
	if _, ok := codes[coder.Code()]; ok {
		panic(fmt.Sprintf("code %d already exist", coder.Code()))
	}
	codes[coder.Code()] = coder
}

type withCode struct {
	err   error
	code  int
	cause error
}

func (w *withCode) Error() string {
	if w.cause == nil {
		return w.err.Error()
	}
	return fmt.Sprintf("%s: %s", w.err.Error(), w.cause.Error())
}

func (w *withCode) Unwrap() error { return w.cause }

// WithCode creates an error carrying code.
func WithCode(code int, format string, args ...interface{}) error {
	return &withCode{err: fmt.Errorf(format, args...), code: code}
}

// WrapC wraps err with a code and a message. A nil err returns nil.
func WrapC(err error, code int, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &withCode{err: fmt.Errorf(format, args...), code: code, cause: err}
}

// ParseCoder returns the registered coder of the outermost coded error in
// the chain of err, or the unknown coder.
func ParseCoder(err error) Coder {
	if err == nil {
		return nil
	}
	var w *withCode
	if errors.As(err, &w) {
		codeMux.RLock()
		defer codeMux.RUnlock()
		if coder, ok := codes[w.code]; ok {
			return coder
		}
	}
	return unknownCoder
}

// IsCode reports whether any error in the chain carries code.
func IsCode(err error, code int) bool {
	var w *withCode
	for errors.As(err, &w) {
		if w.code == code {
			return true
		}
		err = w.cause
	}
	return false
}
