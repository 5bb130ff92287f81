package failure

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{
			name: "nilError",
			err:  nil,
			want: "",
		},
		{
			name: "entityNotFound",
			err:  errors.New("Requested entity was not found."),
			want: CredentialInvalid,
		},
		{
			name: "entityNotFoundWrapped",
			err:  fmt.Errorf("poll operation: %w", errors.New("Error 404, Message: Requested entity was not found., Status: NOT_FOUND")),
			want: CredentialInvalid,
		},
		{
			name: "quotaExceeded",
			err:  errors.New("Error 429, Message: Resource has been exhausted"),
			want: Generation,
		},
		{
			name: "differentCase",
			err:  errors.New("requested entity was not found"),
			want: Generation,
		},
		{
			name: "alreadyClassified",
			err:  fmt.Errorf("extract: %w", New(ResultMissing, "no link", nil)),
			want: ResultMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorMessageIsVerbatim(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := New(Generation, "Failed to summarize content.", cause)

	if err.Error() != "Failed to summarize content." {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("Unwrap() should expose the cause")
	}
}

func TestKindOf(t *testing.T) {
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("KindOf() should not classify plain errors")
	}

	err := fmt.Errorf("wrapped: %w", New(MalformedResponse, "bad quiz", nil))
	kind, ok := KindOf(err)
	if !ok || kind != MalformedResponse {
		t.Errorf("KindOf() = %q, %v, want %q, true", kind, ok, MalformedResponse)
	}
	if !Is(err, MalformedResponse) {
		t.Error("Is() = false, want true")
	}
	if Is(err, Generation) {
		t.Error("Is(Generation) = true, want false")
	}
}
