package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailure_Error(t *testing.T) {
	tests := []struct {
		name     string
		failure  *Failure
		expected string
	}{
		{
			name:     "without cause",
			failure:  NewFailure(KindMissingURL, "url", "URL is required and must be a string"),
			expected: "missing_url: URL is required and must be a string",
		},
		{
			name:     "with cause",
			failure:  WrapFailure(KindTimeout, "Request timeout", errors.New("context deadline exceeded")),
			expected: "timeout: Request timeout: context deadline exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.failure.Error())
		})
	}
}

func TestFailure_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("fetch: %w", WrapFailure(KindNoResponse, "No response received from server", cause))

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, &Failure{Kind: KindNoResponse})
	assert.NotErrorIs(t, err, &Failure{Kind: KindTimeout})
}

func TestKindOf(t *testing.T) {
	kind, ok := KindOf(fmt.Errorf("wrapped: %w", NewFailure(KindPrivateAddress, "url", "x")))
	assert.True(t, ok)
	assert.Equal(t, KindPrivateAddress, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)

	_, ok = KindOf(nil)
	assert.False(t, ok)
}

func TestAllKinds_Unique(t *testing.T) {
	seen := make(map[Kind]bool, len(AllKinds))
	for _, k := range AllKinds {
		assert.False(t, seen[k], "duplicate kind %s", k)
		seen[k] = true
	}
}

func TestKind_Retryable(t *testing.T) {
	assert.True(t, KindTimeout.Retryable())
	assert.True(t, KindOriginServerError.Retryable())
	assert.False(t, KindPrivateAddress.Retryable())
	assert.False(t, KindPayloadTooLarge.Retryable())
}

func TestFailure_IsClass(t *testing.T) {
	for _, k := range AllKinds {
		err := fmt.Errorf("wrapped: %w", NewFailure(k, "", "x"))
		class := k.Class()
		require.NotNil(t, class, "kind %s has no class", k)
		assert.ErrorIs(t, err, class, "kind %s", k)

		other := ErrFetchFailed
		if class == ErrFetchFailed {
			other = ErrInvalidInput
		}
		assert.NotErrorIs(t, err, other, "kind %s", k)
	}

	assert.ErrorIs(t, NewFailure(KindMalformedURL, "url", "x"), ErrInvalidInput)
	assert.ErrorIs(t, WrapFailure(KindDNSFailure, "x", errors.New("nxdomain")), ErrFetchFailed)
	assert.NotErrorIs(t, &Failure{Kind: "bogus"}, ErrInvalidInput)
	assert.NotErrorIs(t, &Failure{Kind: "bogus"}, ErrFetchFailed)
}
