package v1

import (
	"errors"
	"net/http"

	"github.com/kiosk404/toolgate/internal/toolgate/pkg/errno"
	"github.com/kiosk404/toolgate/pkg/errorx"
)

// Toolgate handler error codes.
// Code format: 1XXYYZ
//   - 1:  module prefix (toolgate handler)
//   - XX: resource group (10=common, 11=tool, 12=plugin)
//   - YY: sequential error number
//   - Z:  reserved (0)

const (
	// Common request errors (110xxx).
	ErrBind       = 110001
	ErrValidation = 110002

	// Tool errors (111xxx).
	ErrToolNotFound     = 111001
	ErrToolArguments    = 111002
	ErrToolInvoke       = 111003
	ErrToolConflict     = 111004
	ErrToolNotAvailable = 111005

	// Plugin errors (112xxx).
	ErrPluginNotFound = 112001
	ErrPluginUnload   = 112002
)

func init() {
	// Common.
	errorx.MustRegister(newCoder(ErrBind, http.StatusBadRequest, "Request body binding failed"))
	errorx.MustRegister(newCoder(ErrValidation, http.StatusBadRequest, "Request validation failed"))

	// Tool.
	errorx.MustRegister(newCoder(ErrToolNotFound, http.StatusNotFound, "Tool not found"))
	errorx.MustRegister(newCoder(ErrToolArguments, http.StatusBadRequest, "Tool arguments are invalid or incomplete"))
	errorx.MustRegister(newCoder(ErrToolInvoke, http.StatusInternalServerError, "Tool invocation failed"))
	errorx.MustRegister(newCoder(ErrToolConflict, http.StatusConflict, "Tool state conflict"))
	errorx.MustRegister(newCoder(ErrToolNotAvailable, http.StatusServiceUnavailable, "Tool backend is not available"))

	// Plugin.
	errorx.MustRegister(newCoder(ErrPluginNotFound, http.StatusNotFound, "Plugin not found"))
	errorx.MustRegister(newCoder(ErrPluginUnload, http.StatusInternalServerError, "Failed to unload plugin"))
}

type coder struct {
	code int
	http int
	msg  string
}

func newCoder(code, httpStatus int, msg string) *coder {
	return &coder{code: code, http: httpStatus, msg: msg}
}

func (c *coder) Code() int         { return c.code }
func (c *coder) HTTPStatus() int   { return c.http }
func (c *coder) String() string    { return c.msg }
func (c *coder) Reference() string { return "" }

// toolErrorCode maps an invocation error to a handler code.
func toolErrorCode(err error) int {
	switch {
	case errors.Is(err, errno.ErrToolNotFound), errors.Is(err, errno.ErrComponentNotFound):
		return ErrToolNotFound
	case errors.Is(err, errno.ErrMissingParam), errors.Is(err, errno.ErrInvalidArguments):
		return ErrToolArguments
	case errors.Is(err, errno.ErrRecursiveCall):
		return ErrToolConflict
	case errors.Is(err, errno.ErrNotStarted), errors.Is(err, errno.ErrPluginNotConfigured):
		return ErrToolNotAvailable
	}
	return ErrToolInvoke
}
