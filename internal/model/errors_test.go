package model

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorIsMatchesByKind(t *testing.T) {
	err := New("register", KindBadRegistration, "name must not be empty")
	if !Is(err, KindBadRegistration) {
		t.Error("Is() = false, want true for matching kind")
	}
	if Is(err, KindMissingRecord) {
		t.Error("Is() = true, want false for mismatched kind")
	}
}

func TestErrorsIsInterop(t *testing.T) {
	err := New("get_record", KindMissingRecord, "no record with this id")
	var target error = New("", KindMissingRecord, "")
	if !errors.Is(err, target) {
		t.Error("errors.Is() = false, want true for same Kind")
	}
}

func TestWrapNilReturnsNil(t *testing.T) {
	if Wrap("op", KindIO, nil) != nil {
		t.Error("Wrap(nil) != nil, want nil so call sites can chain without a nil check")
	}
}

func TestWrapPreservesInner(t *testing.T) {
	inner := errors.New("boom")
	err := Wrap("reporter.run", KindHTTPClient, inner)
	if !errors.Is(err, inner) {
		t.Error("errors.Is(wrapped, inner) = false, want true via Unwrap")
	}
}

func TestErrorMessageIncludesOp(t *testing.T) {
	err := New("get_roster", KindEmptyRoster, "no records registered")
	got := err.Error()
	if got == "" {
		t.Fatal("Error() returned empty string")
	}
	if !strings.Contains(got, "get_roster") {
		t.Errorf("Error() = %q, want it to include the op %q", got, "get_roster")
	}
}
