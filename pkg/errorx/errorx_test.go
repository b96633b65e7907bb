package errorx

import (
	"errors"
	"net/http"
	"testing"
)

type testCoder struct{ code, status int }

func (c testCoder) Code() int         { return c.code }
func (c testCoder) HTTPStatus() int   { return c.status }
func (c testCoder) String() string    { return "test coder" }
func (c testCoder) Reference() string { return "" }

func TestWrapCAndParse(t *testing.T) {
	MustRegister(testCoder{code: 990001, status: http.StatusNotFound})

	base := errors.New("boom")
	err := WrapC(base, 990001, "lookup %s", "x")
	if !errors.Is(err, base) {
		t.Error("wrapped error should unwrap to base")
	}
	if got := err.Error(); got != "lookup x: boom" {
		t.Errorf("Error() = %q", got)
	}
	coder := ParseCoder(err)
	if coder.Code() != 990001 || coder.HTTPStatus() != http.StatusNotFound {
		t.Errorf("ParseCoder() = %d/%d", coder.Code(), coder.HTTPStatus())
	}
	if !IsCode(err, 990001) || IsCode(err, 990002) {
		t.Error("IsCode mismatch")
	}
	if WrapC(nil, 990001, "x") != nil {
		t.Error("WrapC(nil) should be nil")
	}
}

func TestParseCoderUnknown(t *testing.T) {
	if got := ParseCoder(errors.New("plain")); got.Code() != ErrUnknown {
		t.Errorf("code = %d", got.Code())
	}
	if got := ParseCoder(WithCode(990099, "unregistered")); got.HTTPStatus() != http.StatusInternalServerError {
		t.Errorf("status = %d", got.HTTPStatus())
	}
	if ParseCoder(nil) != nil {
		t.Error("nil error should give nil coder")
	}
}

func TestMustRegisterDuplicatePanics(t *testing.T) {
	MustRegister(testCoder{code: 990010, status: http.StatusBadRequest})
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustRegister(testCoder{code: 990010, status: http.StatusBadRequest})
}
