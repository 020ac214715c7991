package reqctx

import (
	"context"

	logger "github.com/sirupsen/logrus"
)

type AdminOutcome int

const (
	// AdminNotFound covers "no such admin" and every failed verification.
	AdminNotFound AdminOutcome = iota + 1
	AdminGranted
)

func (o AdminOutcome) String() string {
	switch o {
	case AdminGranted:
		return "ADMIN"
	case AdminNotFound:
		return "NOT_FOUND"
	}
	return "UNCHECKED"
}

// RequestContext is the admission state of one request. It is created when
// the request enters the pipeline and dropped with it.
type RequestContext struct {
	CorrelationID string
	UserID        string
	ClientIP      string

	adminChecked bool
	adminOutcome AdminOutcome
	log          *logger.Entry
}

type contextKey struct{}

func New(correlationID string) *RequestContext {
	return &RequestContext{
		CorrelationID: correlationID,
		log:           logger.WithField("request_id", correlationID),
	}
}

// SetAdminOutcome records the admin verification result. Only the first call
// has an effect; it reports whether this call was the one that set it.
func (this *RequestContext) SetAdminOutcome(outcome AdminOutcome) bool {
	if this.adminChecked {
		return false
	}
	this.adminChecked = true
	this.adminOutcome = outcome
	return true
}

// AdminOutcome returns the recorded outcome and whether admin status was checked at all.
func (this *RequestContext) AdminOutcome() (AdminOutcome, bool) {
	return this.adminOutcome, this.adminChecked
}

func (this *RequestContext) Log() *logger.Entry {
	return this.log
}

func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, contextKey{}, rc)
}

// FromContext returns the request's context, or nil outside the pipeline.
func FromContext(ctx context.Context) *RequestContext {
	rc, _ := ctx.Value(contextKey{}).(*RequestContext)
	return rc
}

// CorrelationID returns the request's correlation id or "" outside the pipeline.
func CorrelationID(ctx context.Context) string {
	if rc := FromContext(ctx); rc != nil {
		return rc.CorrelationID
	}
	return ""
}

// Logger returns a log entry tagged with the request's correlation id.
func Logger(ctx context.Context) *logger.Entry {
	if rc := FromContext(ctx); rc != nil && rc.log != nil {
		return rc.log
	}
	return logger.NewEntry(logger.StandardLogger())
}
