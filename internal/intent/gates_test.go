package intent

import "testing"

func TestIsCodeIntent(t *testing.T) {
	tests := []struct {
		prompt string
		want   bool
	}{
		{"write code to move the thumb servo", true},
		{"generate code for a wave", true},
		{"Arduino sketch please", true},
		{"how do I program this", true},
		{"programming the hand", true},
		{"move thumb up", true},
		{"make the motors spin", true},
		{"change the finger movement", false},
		{"go to ruka hand", false},
		{"what is a robotic hand", false},
	}
	for _, tt := range tests {
		if got := IsCodeIntent(tt.prompt); got != tt.want {
			t.Errorf("IsCodeIntent(%q) = %v, want %v", tt.prompt, got, tt.want)
		}
	}
}

func TestWantsChange(t *testing.T) {
	tests := []struct {
		prompt string
		want   bool
	}{
		{"change the finger movement", true},
		{"customize the robotic hand", true},
		{"Edit joint limits", true},
		{"change the page", false},
		{"the hand is nice", false},
	}
	for _, tt := range tests {
		if got := WantsChange(tt.prompt); got != tt.want {
			t.Errorf("WantsChange(%q) = %v, want %v", tt.prompt, got, tt.want)
		}
	}
}

func TestAsksAboutChanges(t *testing.T) {
	if !AsksAboutChanges("how do I code the hand") {
		t.Error("code + hand should count as a change question")
	}
	if AsksAboutChanges("code for tenxer") {
		t.Error("tenxer is not a hand noun for rephrasing")
	}
}

func TestInformationBeatsNavigation(t *testing.T) {
	tests := []struct {
		prompt   string
		wantInfo bool
		wantNav  bool
	}{
		{"what is on the next page", true, false},
		{"go to the help page", false, true},
		{"explain how to go to settings", true, false},
		{"navigate to something", false, true},
		{"hello there", false, false},
	}
	for _, tt := range tests {
		if got := IsInformation(tt.prompt); got != tt.wantInfo {
			t.Errorf("IsInformation(%q) = %v, want %v", tt.prompt, got, tt.wantInfo)
		}
		if got := IsNavigation(tt.prompt); got != tt.wantNav {
			t.Errorf("IsNavigation(%q) = %v, want %v", tt.prompt, got, tt.wantNav)
		}
	}
}
