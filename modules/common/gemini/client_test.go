package gemini

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "none"},
		{"429 status", errors.New("Error 429, Message: Resource has been exhausted"), "quota"},
		{"quota text", errors.New("you exceeded your current QUOTA"), "quota"},
		{"invalid key", errors.New("Error 400, Message: API key not valid. Please pass a valid API key."), "auth"},
		{"permission denied", errors.New("PERMISSION_DENIED"), "auth"},
		{"cancelled", context.Canceled, "cancelled"},
		{"other", fmt.Errorf("dial tcp: connection refused"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DescribeError(tt.err))
		})
	}
}

func TestIsQuotaError(t *testing.T) {
	assert.False(t, IsQuotaError(nil))
	assert.True(t, IsQuotaError(errors.New("rate limit reached")))
	assert.False(t, IsQuotaError(errors.New("bad request")))
}
