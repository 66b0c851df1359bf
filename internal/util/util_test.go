package util

import "testing"

func TestMaskEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"jordan@example.org", "j***@example.org"},
		{"a@example.org", "a***@example.org"},
		{" padded@example.org ", "p***@example.org"},
	}
	for _, tc := range cases {
		if got := MaskEmail(tc.in); got != tc.want {
			t.Fatalf("MaskEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMaskEmailNotAnEmail(t *testing.T) {
	if got := MaskEmail("not-an-email-at-all"); got != "not-...-all" {
		t.Fatalf("MaskEmail fallback = %q", got)
	}
}

func TestHideToken(t *testing.T) {
	if got := HideToken("abcdefghijkl"); got != "abcd...ijkl" {
		t.Fatalf("long token = %q", got)
	}
	if got := HideToken("abcdef"); got != "ab...ef" {
		t.Fatalf("medium token = %q", got)
	}
	if got := HideToken("abc"); got != "a...c" {
		t.Fatalf("short token = %q", got)
	}
	if got := HideToken("ab"); got != "ab" {
		t.Fatalf("tiny token = %q", got)
	}
}
