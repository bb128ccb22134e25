package cli

import (
	"io"
	"testing"
)

// TestResolveUIMode verifies ui mode decision logic.
func TestResolveUIMode(t *testing.T) {
	cases := []struct {
		name        string
		mode        string
		verbose     bool
		noColor     bool
		noColorEnv  bool
		isTTY       bool
		expectLive  bool
		expectPlain bool
		wantWarn    bool
		wantErr     bool
	}{
		{name: "auto tty", mode: "auto", isTTY: true, expectLive: true},
		{name: "auto non-tty", mode: "auto", isTTY: false, expectLive: false, expectPlain: true},
		{name: "plain", mode: "plain", isTTY: true, expectLive: false},
		{name: "verbose disables", mode: "auto", verbose: true, isTTY: true, expectLive: false},
		{name: "live tty", mode: "live", isTTY: true, expectLive: true},
		{name: "live non-tty warning", mode: "live", isTTY: false, expectLive: false, expectPlain: true, wantWarn: true},
		{name: "no-color flag", mode: "live", noColor: true, isTTY: true, expectLive: true, expectPlain: true},
		{name: "NO_COLOR env", mode: "auto", noColorEnv: true, isTTY: true, expectLive: true, expectPlain: true},
		{name: "invalid mode", mode: "nope", isTTY: true, wantErr: true},
	}

	originalTTY := isTerminal
	originalEnv := lookupEnv
	t.Cleanup(func() {
		isTerminal = originalTTY
		lookupEnv = originalEnv
	})

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			isTerminal = func(_ io.Writer) bool { return tc.isTTY }
			lookupEnv = func(key string) (string, bool) {
				if key == "NO_COLOR" && tc.noColorEnv {
					return "1", true
				}
				return "", false
			}
			decision, err := resolveUIMode(tc.mode, tc.verbose, tc.noColor, nil)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if decision.useLive != tc.expectLive {
				t.Fatalf("expected useLive=%v, got %v", tc.expectLive, decision.useLive)
			}
			if decision.noColor != tc.expectPlain {
				t.Fatalf("expected noColor=%v, got %v", tc.expectPlain, decision.noColor)
			}
			if tc.wantWarn && decision.warning == "" {
				t.Fatalf("expected warning")
			}
			if !tc.wantWarn && decision.warning != "" {
				t.Fatalf("did not expect warning")
			}
		})
	}
}
