package services

import (
	"errors"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("connection refused")
	err := Wrap(ErrTransient, "spotweb", "search", "variant failed", base)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatal("expected wrapped cause to remain unwrappable")
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "catalog", "login", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("nil marker should default to ErrTransient, got %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{Wrap(ErrTransient, "sabnzbd", "addurl", "", nil), true},
		{Wrap(ErrAuth, "catalog", "login", "", nil), true},
		{Wrap(ErrValidation, "queue", "add", "", nil), false},
		{Wrap(ErrConfiguration, "config", "load", "", nil), false},
	}
	for _, tc := range cases {
		if got := IsRetryable(tc.err); got != tc.want {
			t.Fatalf("IsRetryable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
