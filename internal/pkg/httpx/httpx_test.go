package httpx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"syscall"
	"testing"
	"time"
)

type statusErr struct {
	code int
}

func (e statusErr) Error() string       { return fmt.Sprintf("http status %d", e.code) }
func (e statusErr) HTTPStatusCode() int { return e.code }

func dialErr(errno syscall.Errno) error {
	return &url.Error{
		Op:  "Post",
		URL: "http://127.0.0.1:1/v1/embeddings",
		Err: &net.OpError{
			Op:  "dial",
			Net: "tcp",
			Err: os.NewSyscallError("connect", errno),
		},
	}
}

func TestIsRetryableHTTPStatus(t *testing.T) {
	cases := []struct {
		code int
		want bool
	}{
		{408, true},
		{429, true},
		{500, true},
		{503, true},
		{599, true},
		{200, false},
		{400, false},
		{401, false},
		{404, false},
	}
	for _, tc := range cases {
		if got := IsRetryableHTTPStatus(tc.code); got != tc.want {
			t.Fatalf("IsRetryableHTTPStatus(%d) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestIsRetryableErrorConnectionFailures(t *testing.T) {
	// A backend that is down surfaces as connection refused or reset, not as
	// a timeout; both must be retried.
	if !IsRetryableError(dialErr(syscall.ECONNREFUSED)) {
		t.Fatalf("connection refused must be retryable")
	}
	if !IsRetryableError(dialErr(syscall.ECONNRESET)) {
		t.Fatalf("connection reset must be retryable")
	}
	if !IsRetryableError(fmt.Errorf("write failed: %w", syscall.EPIPE)) {
		t.Fatalf("broken pipe must be retryable")
	}
}

func TestIsRetryableError(t *testing.T) {
	if !IsRetryableError(context.DeadlineExceeded) {
		t.Fatalf("deadline exceeded must be retryable")
	}
	if !IsRetryableError(fmt.Errorf("call failed: %w", statusErr{code: 503})) {
		t.Fatalf("wrapped 503 must be retryable")
	}
	if IsRetryableError(statusErr{code: 401}) {
		t.Fatalf("401 must not be retryable")
	}
	if IsRetryableError(errors.New("malformed response body")) {
		t.Fatalf("a plain error is not retryable")
	}
	if IsRetryableError(nil) {
		t.Fatalf("nil error is not retryable")
	}
}

func TestRetryAfterDuration(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("Retry-After", "3")
	if got := RetryAfterDuration(resp, time.Second, 10*time.Second); got != 3*time.Second {
		t.Fatalf("Retry-After header ignored: got %v", got)
	}
	if got := RetryAfterDuration(resp, time.Second, 2*time.Second); got != 2*time.Second {
		t.Fatalf("Retry-After must be capped at max: got %v", got)
	}
	if got := RetryAfterDuration(nil, time.Second, 10*time.Second); got != time.Second {
		t.Fatalf("missing response should use the fallback: got %v", got)
	}
	resp.Header.Set("Retry-After", "not-a-number")
	if got := RetryAfterDuration(resp, time.Second, 10*time.Second); got != time.Second {
		t.Fatalf("unparseable header should use the fallback: got %v", got)
	}
}

func TestJitterSleepBounds(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 50; i++ {
		got := JitterSleep(base)
		if got < 80*time.Millisecond || got > 120*time.Millisecond {
			t.Fatalf("jitter out of +-20%% band: %v", got)
		}
	}
	if got := JitterSleep(0); got != 0 {
		t.Fatalf("zero base must sleep zero, got %v", got)
	}
}
