package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectMethodRequest(t *testing.T) {
	v := New()

	for _, method := range []string{"cash", "credit_card", "qr_code"} {
		assert.NoError(t, v.Struct(SelectMethodRequest{Method: method}), "method %q", method)
	}
	assert.Error(t, v.Struct(SelectMethodRequest{Method: "bank_transfer"}))
	assert.Error(t, v.Struct(SelectMethodRequest{}))
}

func TestSelectShippingRequest(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(SelectShippingRequest{OptionID: "standard"}))
	assert.Error(t, v.Struct(SelectShippingRequest{}))
}

func TestNoteRequest(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(NoteRequest{Note: "leave at the door"}))

	long := make([]byte, 501)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, v.Struct(NoteRequest{Note: string(long)}))
}
