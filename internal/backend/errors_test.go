package backend

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormat(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "bare kind",
			err:  &Error{Kind: KindTimeout},
			want: "timeout",
		},
		{
			name: "op and detail",
			err:  &Error{Kind: KindBackend, Op: "list", Detail: "exit status 1"},
			want: "list: backend_error: exit status 1",
		},
		{
			name: "wrapped cause",
			err:  &Error{Kind: KindConnectionLost, Op: "stats", Detail: "cannot start backend bd", Err: errors.New("file not found")},
			want: "stats: connection_lost: cannot start backend bd: file not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("loading column: %w", &Error{Kind: KindLoadFailed, Op: "list", Err: cause})

	if KindOf(err) != KindLoadFailed {
		t.Errorf("KindOf through wrap = %v", KindOf(err))
	}
	if !errors.Is(err, cause) {
		t.Error("cause lost through the chain")
	}
}

func TestIsValidation(t *testing.T) {
	if !(&Error{Kind: KindInvalidIdentifier}).IsValidation() {
		t.Error("invalid_identifier should be a validation failure")
	}
	if !(&Error{Kind: KindUnsafeArgument}).IsValidation() {
		t.Error("unsafe_argument should be a validation failure")
	}
	if (&Error{Kind: KindBackend}).IsValidation() {
		t.Error("backend_error is not a validation failure")
	}
}

func TestKindOfForeignError(t *testing.T) {
	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("KindOf(plain) = %q, want empty", got)
	}
	if got := KindOf(nil); got != "" {
		t.Errorf("KindOf(nil) = %q, want empty", got)
	}
}

func TestRawText(t *testing.T) {
	stderrErr := &Error{Kind: KindBackend, Op: "list", Detail: "exit status 1", Stderr: "Error: no database at /home/alice/.beads\n"}
	if got := RawText(stderrErr); got != stderrErr.Stderr {
		t.Errorf("RawText = %q, want stderr", got)
	}

	detailErr := &Error{Kind: KindMalformedResponse, Op: "list", Detail: "bd: database is locked"}
	if got := RawText(detailErr); got != "bd: database is locked" {
		t.Errorf("RawText = %q, want detail", got)
	}

	if got := RawText(errors.New("outside error")); got != "outside error" {
		t.Errorf("RawText(foreign) = %q", got)
	}
	if got := RawText(nil); got != "" {
		t.Errorf("RawText(nil) = %q", got)
	}
}
