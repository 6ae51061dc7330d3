package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterRestrictionMessage(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected string
	}{
		{
			name:     "given login wording should return generic message",
			message:  "Please login to place an order",
			expected: genericRetryMessage,
		},
		{
			name:     "given sign in wording should return generic message",
			message:  "Sign in required for checkout",
			expected: genericRetryMessage,
		},
		{
			name:     "given account wording should return generic message",
			message:  "An ACCOUNT is required to order",
			expected: genericRetryMessage,
		},
		{
			name:     "given register wording should return generic message",
			message:  "Register before checking out",
			expected: genericRetryMessage,
		},
		{
			name:     "given empty message should return generic message",
			message:  "",
			expected: genericRetryMessage,
		},
		{
			name:     "given harmless message should pass through",
			message:  "Dune is out of stock",
			expected: "Dune is out of stock",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, filterRestrictionMessage(test.message))
		})
	}
}
