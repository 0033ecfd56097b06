package llm

import "testing"

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n[1,2]\n```", `[1,2]`},
		{"whitespace", "  \n{\"a\":1}\n ", `{"a":1}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractJSON(tc.in); got != tc.want {
				t.Fatalf("ExtractJSON(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(nil) {
		t.Fatal("nil error must not be retryable")
	}
	retryable := []string{
		"groq returned status 429",
		"Post \"https://api.groq.com\": connection refused",
		"groq returned status 502: bad gateway",
	}
	for _, msg := range retryable {
		if !IsRetryable(errString(msg)) {
			t.Errorf("expected retryable: %s", msg)
		}
	}
	if IsRetryable(errString("groq returned status 401")) {
		t.Error("auth failure must not be retryable")
	}
}

type errString string

func (e errString) Error() string { return string(e) }
