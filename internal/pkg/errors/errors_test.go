package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

type recordingSink struct {
	alerts []Kind
}

func (s *recordingSink) Alert(kind Kind, _ string, _ error) {
	s.alerts = append(s.alerts, kind)
}

func TestClassifyByMessage(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		wantKind  Kind
		retryable bool
	}{
		{"rate limit", stderrors.New("429 too many requests"), KindRateLimit, true},
		{"auth", stderrors.New("invalid api key provided"), KindAuthentication, false},
		{"network", stderrors.New("dial tcp: connection refused"), KindNetwork, true},
		{"database", stderrors.New("ERROR: duplicate key value (SQLSTATE 23505)"), KindDatabase, true},
		{"validation", stderrors.New("profile text is empty"), KindValidation, false},
		{"unknown", stderrors.New("something odd happened"), KindUnknown, false},
	}

	c := NewClassifier(nil)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Classify(tc.err)
			if got.Kind != tc.wantKind {
				t.Fatalf("Kind = %s, want %s", got.Kind, tc.wantKind)
			}
			if got.Retryable != tc.retryable {
				t.Fatalf("Retryable = %v, want %v", got.Retryable, tc.retryable)
			}
		})
	}
}

type coderErr struct {
	code int
}

func (e coderErr) Error() string       { return fmt.Sprintf("provider http %d", e.code) }
func (e coderErr) HTTPStatusCode() int { return e.code }

func TestClassifyHTTPStatus(t *testing.T) {
	cases := []struct {
		name      string
		code      int
		wantKind  Kind
		retryable bool
	}{
		{"rate limited", 429, KindRateLimit, true},
		{"unauthorized", 401, KindAuthentication, false},
		{"forbidden", 403, KindAuthentication, false},
		{"server error", 503, KindAIService, true},
		{"bad request", 400, KindAIService, false},
	}

	c := NewClassifier(nil)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Classify(fmt.Errorf("embed call: %w", coderErr{code: tc.code}))
			if got.Kind != tc.wantKind {
				t.Fatalf("Kind = %s, want %s", got.Kind, tc.wantKind)
			}
			if got.Retryable != tc.retryable {
				t.Fatalf("Retryable = %v, want %v", got.Retryable, tc.retryable)
			}
		})
	}
}

func TestClassifyHTTPStatusNonErrorFallsThrough(t *testing.T) {
	// A 2xx-coded error is nonsense from the provider; message-based
	// classification takes over instead.
	got := NewClassifier(nil).Classify(coderErr{code: 200})
	if got.Kind != KindUnknown {
		t.Fatalf("Kind = %s, want %s", got.Kind, KindUnknown)
	}
}

func TestClassifyPassesThroughClassified(t *testing.T) {
	original := Validation("bad input", stderrors.New("empty field"))
	wrapped := fmt.Errorf("run user: %w", original)

	got := NewClassifier(nil).Classify(wrapped)
	if got != original {
		t.Fatalf("wrapped classified error should pass through unchanged")
	}
}

func TestClassifyNil(t *testing.T) {
	if got := NewClassifier(nil).Classify(nil); got != nil {
		t.Fatalf("Classify(nil) = %v, want nil", got)
	}
}

func TestCriticalErrorsFireAlertSink(t *testing.T) {
	sink := &recordingSink{}
	c := NewClassifier(sink)

	c.Classify(stderrors.New("unauthorized"))
	if len(sink.alerts) != 1 || sink.alerts[0] != KindAuthentication {
		t.Fatalf("critical auth error should alert once, got %v", sink.alerts)
	}

	c.Classify(stderrors.New("dial tcp: timeout"))
	if len(sink.alerts) != 1 {
		t.Fatalf("medium-severity errors must not alert, got %v", sink.alerts)
	}

	c.Classify(AIService(false, stderrors.New("model gone")))
	if len(sink.alerts) != 2 || sink.alerts[1] != KindAIService {
		t.Fatalf("non-retryable AI errors are critical and should alert, got %v", sink.alerts)
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(RateLimit(stderrors.New("429"))) {
		t.Fatalf("rate limit errors are retryable")
	}
	if IsRetryable(Validation("bad", nil)) {
		t.Fatalf("validation errors are not retryable")
	}
	if IsRetryable(stderrors.New("plain")) {
		t.Fatalf("unclassified errors are not retryable")
	}
	if !IsRetryable(fmt.Errorf("wrap: %w", Database(stderrors.New("down")))) {
		t.Fatalf("retryable flag should survive wrapping")
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(Database(stderrors.New("down"))); got != KindDatabase {
		t.Fatalf("KindOf = %s, want %s", got, KindDatabase)
	}
	if got := KindOf(stderrors.New("plain")); got != KindUnknown {
		t.Fatalf("KindOf unclassified = %s, want %s", got, KindUnknown)
	}
}
