package checkout

import (
	"strings"
)

const genericRetryMessage = "We could not place your order right now. Please try again."

// Known fragility: the upstream signals "guest checkout disabled" only
// through free-text messages, so restriction wording is detected by pattern
// matching. A guest flow must never surface copy implying an account is
// required; such messages are swapped for a generic retry prompt.
var restrictionWords = []string{"login", "log in", "sign in", "account", "register"}

func filterRestrictionMessage(message string) string {
	lowered := strings.ToLower(message)
	for _, word := range restrictionWords {
		if strings.Contains(lowered, word) {
			return genericRetryMessage
		}
	}
	if message == "" {
		return genericRetryMessage
	}
	return message
}
