package engraver

import "golang.org/x/xerrors"

// Kind identifies the class of a fatal error, for the one-line
// machine-parseable diagnostic the CLI prints before shutting down.
type Kind string

const (
	KindConfigInvalid       Kind = "ConfigInvalid"
	KindPathMissing         Kind = "PathMissing"
	KindDiskFull            Kind = "DiskFull"
	KindHostMemInsufficient Kind = "HostMemInsufficient"
	KindAlreadyCompleted    Kind = "AlreadyCompleted"
	KindIoFailed            Kind = "IoFailed"
	KindAffinityUnavailable Kind = "AffinityUnavailable"
)

// TaskError is a fatal, classified error carrying the fields a one-line
// diagnostic needs (kind plus free-form key=value context).
type TaskError struct {
	kind    Kind
	fields  map[string]interface{}
	wrapped error
}

func (e *TaskError) Error() string {
	return e.wrapped.Error()
}

func (e *TaskError) Unwrap() error { return e.wrapped }

// Kind reports the error's classification.
func (e *TaskError) Kind() Kind { return e.kind }

// Fields returns the key=value context attached to the error. Map
// iteration order is unspecified; callers that need a stable rendering
// (the CLI's one-line diagnostic) must sort the keys themselves.
func (e *TaskError) Fields() map[string]interface{} { return e.fields }

func newTaskError(kind Kind, fields map[string]interface{}, format string, args ...interface{}) *TaskError {
	return &TaskError{
		kind:    kind,
		fields:  fields,
		wrapped: xerrors.Errorf(format, args...),
	}
}

// AsTaskError unwraps err looking for a *TaskError, mirroring
// xerrors.As without forcing every caller to allocate a target.
func AsTaskError(err error) (*TaskError, bool) {
	var te *TaskError
	if xerrors.As(err, &te) {
		return te, true
	}
	return nil, false
}
