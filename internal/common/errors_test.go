package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapError(t *testing.T) {
	tests := []struct {
		name            string
		originalError   error
		message         string
		expectedMessage string
	}{
		{
			name:            "wrap simple error",
			originalError:   errors.New("original error"),
			message:         "wrapper message",
			expectedMessage: "wrapper message: original error",
		},
		{
			name:            "empty wrapper message",
			originalError:   errors.New("original error"),
			message:         "",
			expectedMessage: ": original error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrappedError := WrapError(tt.originalError, tt.message)
			require.Error(t, wrappedError)
			assert.Equal(t, tt.expectedMessage, wrappedError.Error())
			assert.ErrorIs(t, wrappedError, tt.originalError)
		})
	}
}

func TestWrapError_NilStaysNil(t *testing.T) {
	assert.NoError(t, WrapError(nil, "context"))
	assert.NoError(t, WrapErrorf(nil, "context %d", 1))
}

func TestWrapErrorf(t *testing.T) {
	base := errors.New("boom")
	err := WrapErrorf(base, "subject %q failed after %d tries", "feed", 3)
	assert.Equal(t, `subject "feed" failed after 3 tries: boom`, err.Error())
	assert.ErrorIs(t, err, base)
}

func TestNetworkError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError("https://example.com", "request failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "https://example.com")

	var netErr *NetworkError
	require.ErrorAs(t, WrapError(err, "fetch"), &netErr)
	assert.Equal(t, "request failed", netErr.Reason)
}

func TestGetRootCause(t *testing.T) {
	root := errors.New("root")
	err := WrapError(WrapError(root, "middle"), "outer")
	assert.Equal(t, root, GetRootCause(err))
}

func TestErrorCollector(t *testing.T) {
	var ec ErrorCollector
	assert.False(t, ec.HasErrors())
	assert.NoError(t, ec.Error())

	ec.Add(nil)
	assert.False(t, ec.HasErrors())

	ec.Add(errors.New("first"))
	assert.EqualError(t, ec.Error(), "first")

	ec.AddWithContext(errors.New("second"), "subject b")
	assert.True(t, ec.HasErrors())
	assert.EqualError(t, ec.Error(), "multiple errors occurred: [first; subject b: second]")
}

func TestCombineErrors_KeepsChain(t *testing.T) {
	first := errors.New("scan failed")
	second := NewNetworkError("smtp://mail", "dial", errors.New("refused"))

	assert.NoError(t, CombineErrors([]error{nil, nil}))
	assert.Equal(t, first, CombineErrors([]error{nil, first}))

	err := CombineErrors([]error{first, nil, second})
	assert.ErrorIs(t, err, first)
	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
	assert.Contains(t, err.Error(), "scan failed; ")
}
