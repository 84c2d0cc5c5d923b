package claims

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("claim", "abc-123")
	if err.Error() != `claim "abc-123" not found` {
		t.Errorf("message = %q", err.Error())
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound should match a NotFoundError")
	}
	if !IsNotFound(fmt.Errorf("outer: %w", err)) {
		t.Error("IsNotFound should match a wrapped NotFoundError")
	}
	if IsNotFound(errors.New("plain")) {
		t.Error("IsNotFound must not match arbitrary errors")
	}
}

func TestInvalidInputError(t *testing.T) {
	err := NewInvalidInputError("unknown action %q", "promote")
	if err.Error() != `unknown action "promote"` {
		t.Errorf("message = %q", err.Error())
	}
	if !IsInvalidInput(err) {
		t.Error("IsInvalidInput should match")
	}
	if IsInvalidInput(NewNotFoundError("task", "x")) {
		t.Error("IsInvalidInput must not match NotFoundError")
	}
}

func TestStorageErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStorageError("sqlite", "insert_claim", cause)
	if !errors.Is(err, cause) {
		t.Error("StorageError should unwrap to its cause")
	}
}

func TestValidators(t *testing.T) {
	for _, d := range []Directive{DirectivePass, DirectiveFail, DirectiveReview, DirectiveWarning, DirectiveSuperseded} {
		if !ValidDirective(d) {
			t.Errorf("%s should be valid", d)
		}
	}
	if ValidDirective("MAYBE") {
		t.Error("unknown directive accepted")
	}
	if !ValidProvenance(ProvenanceHuman) || ValidProvenance("guesswork") {
		t.Error("provenance validation broken")
	}
}
