package agent

import (
	"strings"

	"github.com/rhuss/clinicdesk/pkg/api"
)

// Intent is the coarse purpose of a chat message.
type Intent string

const (
	IntentFAQ        Intent = api.IntentFAQ
	IntentScheduling Intent = api.IntentScheduling
	IntentSmallTalk  Intent = api.IntentSmallTalk
)

var (
	faqKeywords = []string{
		"insurance", "billing", "location", "where", "hours", "open", "close",
		"parking", "cancelation policy", "covid",
	}
	schedulingKeywords = []string{
		"book", "schedule", "appointment", "see doctor", "reschedule", "cancel",
	}
)

// DetectIntent classifies msg by case-insensitive substring match. FAQ
// keywords are checked before scheduling keywords, so "where do I cancel"
// is an FAQ. Anything else is small talk.
func DetectIntent(msg string) Intent {
	lower := strings.ToLower(msg)
	switch {
	case containsAny(lower, faqKeywords):
		return IntentFAQ
	case containsAny(lower, schedulingKeywords):
		return IntentScheduling
	default:
		return IntentSmallTalk
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
