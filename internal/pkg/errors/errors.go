package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/tandem-backend/internal/pkg/httpx"
)

// Kind is the machine-readable error category used for retry and alerting
// decisions throughout the matching pipeline.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindNetwork        Kind = "network"
	KindAIService      Kind = "ai_service"
	KindRateLimit      Kind = "rate_limit"
	KindDatabase       Kind = "database"
	KindAuthentication Kind = "authentication"
	KindUnknown        Kind = "unknown"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Classified wraps an underlying error with its kind, severity, a retryable
// flag, and a user-facing message free of implementation detail.
type Classified struct {
	Kind      Kind
	Severity  Severity
	Retryable bool
	Message   string
	Err       error
}

func (e *Classified) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Classified) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func New(kind Kind, severity Severity, retryable bool, message string, err error) *Classified {
	return &Classified{
		Kind:      kind,
		Severity:  severity,
		Retryable: retryable,
		Message:   message,
		Err:       err,
	}
}

func Validation(message string, err error) *Classified {
	return New(KindValidation, SeverityLow, false, message, err)
}

func RateLimit(err error) *Classified {
	return New(KindRateLimit, SeverityMedium, true, "The service is busy, please try again shortly.", err)
}

func AIService(retryable bool, err error) *Classified {
	severity := SeverityMedium
	if !retryable {
		severity = SeverityCritical
	}
	return New(KindAIService, severity, retryable, "Match generation is temporarily unavailable.", err)
}

func Database(err error) *Classified {
	return New(KindDatabase, SeverityHigh, true, "Something went wrong saving your data.", err)
}

// IsRetryable reports whether err (or any error it wraps) is a Classified
// error marked retryable. Unclassified errors are not retried.
func IsRetryable(err error) bool {
	var c *Classified
	if errors.As(err, &c) {
		return c.Retryable
	}
	return false
}

// KindOf extracts the kind from a classified error chain, or KindUnknown.
func KindOf(err error) Kind {
	var c *Classified
	if errors.As(err, &c) {
		return c.Kind
	}
	return KindUnknown
}

// AlertSink receives critical-severity errors. The default sink only logs;
// no automatic remediation happens here.
type AlertSink interface {
	Alert(kind Kind, message string, err error)
}

// Classifier turns arbitrary errors into Classified errors. It is stateless
// and injectable; construct one per run or share freely.
type Classifier struct {
	sink AlertSink
}

func NewClassifier(sink AlertSink) *Classifier {
	return &Classifier{sink: sink}
}

// Classify maps an error onto the taxonomy. Already-classified errors pass
// through unchanged (the sink still fires for critical severity).
func (c *Classifier) Classify(err error) *Classified {
	if err == nil {
		return nil
	}

	var classified *Classified
	if !errors.As(err, &classified) {
		classified = classifyStatus(err)
	}
	if classified == nil {
		classified = classifyByMessage(err)
	}

	if classified.Severity == SeverityCritical && c != nil && c.sink != nil {
		c.sink.Alert(classified.Kind, classified.Message, classified.Err)
	}
	return classified
}

// classifyStatus maps errors that carry an HTTP status, such as failed AI
// provider calls, onto the taxonomy. Returns nil when no status is present.
func classifyStatus(err error) *Classified {
	var sc httpx.HTTPStatusCoder
	if !errors.As(err, &sc) {
		return nil
	}
	code := sc.HTTPStatusCode()
	switch {
	case code == 429:
		return RateLimit(err)
	case code == 401 || code == 403:
		return New(KindAuthentication, SeverityCritical, false, "Your session could not be verified.", err)
	case httpx.IsRetryableHTTPStatus(code):
		return AIService(true, err)
	case code >= 400:
		return AIService(false, err)
	default:
		return nil
	}
}

// classifyByMessage is the fallback path for errors that never passed
// through a typed constructor.
func classifyByMessage(err error) *Classified {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests"):
		return RateLimit(err)
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "api key") || strings.Contains(msg, "forbidden"):
		return New(KindAuthentication, SeverityCritical, false, "Your session could not be verified.", err)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host"):
		return New(KindNetwork, SeverityMedium, true, "A network problem interrupted the request.", err)
	case strings.Contains(msg, "duplicate key") || strings.Contains(msg, "sqlstate") || strings.Contains(msg, "constraint"):
		return Database(err)
	case strings.Contains(msg, "invalid") || strings.Contains(msg, "required") || strings.Contains(msg, "empty"):
		return Validation("The submitted data could not be processed.", err)
	default:
		return New(KindUnknown, SeverityMedium, false, "An unexpected error occurred.", err)
	}
}
