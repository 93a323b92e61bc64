package fsm

import "testing"

func TestCanTransition(t *testing.T) {
	if !CanTransition(StatusDraft, StatusSent) {
		t.Fatal("expected draft -> sent to be allowed")
	}
	if CanTransition(StatusDraft, StatusVoided) {
		t.Fatal("unexpected draft -> voided allowed")
	}
	if !CanTransition(StatusSent, StatusViewed) {
		t.Fatal("expected sent -> viewed to be allowed")
	}
	if !CanTransition(StatusViewed, StatusPaid) {
		t.Fatal("expected viewed -> paid to be allowed")
	}
	if !CanTransition(StatusSent, StatusVoided) {
		t.Fatal("expected sent -> voided to be allowed")
	}
	if CanTransition(StatusViewed, StatusDraft) {
		t.Fatal("unexpected viewed -> draft allowed")
	}
}

func TestCanTransitionTerminalStates(t *testing.T) {
	terminals := []string{StatusPaid, StatusVoid, StatusVoided}
	targets := []string{StatusDraft, StatusSent, StatusViewed, StatusPaid, StatusVoided}
	for _, from := range terminals {
		for _, to := range targets {
			got := CanTransition(from, to)
			want := from == to
			if got != want {
				t.Fatalf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
		if !IsTerminal(from) {
			t.Fatalf("expected %s to be terminal", from)
		}
	}
}

func TestCanTransitionUnsetAndIdempotent(t *testing.T) {
	if !CanTransition("", StatusVoided) {
		t.Fatal("initial assignment must always be allowed")
	}
	if !CanTransition(StatusSent, StatusSent) {
		t.Fatal("idempotent no-op must be allowed")
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Draft":                   StatusDraft,
		"  sent ":                 StatusSent,
		"void":                    StatusVoided,
		"Sent - Awaiting Payment": StatusSent,
		"Voided+Email Sent":       StatusVoided,
		"voided + email sent":     StatusVoided,
		"1":                       StatusDraft,
		"2":                       StatusSent,
		"3":                       StatusViewed,
		"4":                       StatusPaid,
		"5":                       StatusPaid,
		"partial":                 "partial", // unknown stays as-is
	}
	for raw, want := range cases {
		if got := Normalize(raw); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", raw, got, want)
		}
	}
}
