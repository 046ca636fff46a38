package ingest

import "errors"

// IngestError classifies append failures so callers can distinguish
// codec trouble from store contract violations.
type IngestError struct {
	// Kind indicates which stage of the append failed.
	Kind IngestErrorKind
	// Err is the underlying error.
	Err error
}

// IngestErrorKind classifies ingestion errors.
type IngestErrorKind int

const (
	// IngestErrorCodec indicates a compression failure while staging.
	IngestErrorCodec IngestErrorKind = iota
	// IngestErrorStore indicates the store rejected the commit.
	IngestErrorStore
	// IngestErrorBusy indicates another append was already in flight.
	IngestErrorBusy
)

func (e *IngestError) Error() string {
	return e.Err.Error()
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

// IsCodecError returns true if the error is a staging compression
// failure.
func IsCodecError(err error) bool {
	var ingErr *IngestError
	if errors.As(err, &ingErr) {
		return ingErr.Kind == IngestErrorCodec
	}
	return false
}

// IsBusyError returns true if the error reports a concurrent append.
func IsBusyError(err error) bool {
	var ingErr *IngestError
	if errors.As(err, &ingErr) {
		return ingErr.Kind == IngestErrorBusy
	}
	return false
}

// errAppendInFlight is wrapped into an IngestError by Append.
var errAppendInFlight = errors.New("append already in flight")
