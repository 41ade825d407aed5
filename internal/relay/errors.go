package relay

// Kind classifies relay failures.
type Kind string

const (
	KindValidation    Kind = "VALIDATION_ERROR"
	KindAuth          Kind = "AUTH_ERROR"
	KindAuthTimeout   Kind = "AUTH_TIMEOUT"
	KindUpload        Kind = "UPLOAD_ERROR"
	KindUploadTimeout Kind = "UPLOAD_TIMEOUT"
)

// Sentinels for errors.Is matching by kind.
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrAuth          = &Error{Kind: KindAuth}
	ErrAuthTimeout   = &Error{Kind: KindAuthTimeout}
	ErrUpload        = &Error{Kind: KindUpload}
	ErrUploadTimeout = &Error{Kind: KindUploadTimeout}
)

// Error is a relay failure with a caller-facing reason.
type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return string(e.Kind)
	}
	return e.Reason
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind Kind, reason string, cause error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: cause}
}
