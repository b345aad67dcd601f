package agent

import "testing"

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		msg  string
		want Intent
	}{
		{"What are your hours?", IntentFAQ},
		{"Do you take INSURANCE?", IntentFAQ},
		{"Where are you located", IntentFAQ},
		{"Is there parking nearby?", IntentFAQ},
		{"What's your cancelation policy?", IntentFAQ},
		{"covid rules?", IntentFAQ},
		{"When do you close on Saturday", IntentFAQ},
		{"I'd like to book an appointment", IntentScheduling},
		{"Can I schedule something for Monday", IntentScheduling},
		{"I need to see doctor soon", IntentScheduling},
		{"Please reschedule me", IntentScheduling},
		{"I want to cancel", IntentScheduling},
		// FAQ keywords win over scheduling keywords.
		{"Where do I book?", IntentFAQ},
		{"hello there", IntentSmallTalk},
		{"", IntentSmallTalk},
		{"thanks!", IntentSmallTalk},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			if got := DetectIntent(tt.msg); got != tt.want {
				t.Errorf("DetectIntent(%q) = %s, want %s", tt.msg, got, tt.want)
			}
		})
	}
}
