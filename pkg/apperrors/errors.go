package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound                = errors.New("not found")
	ErrInvalidArgument         = errors.New("invalid argument")
	ErrConflict                = errors.New("conflict")
	ErrMalformedURI            = errors.New("malformed URI")
	ErrUnsupportedEndpointType = errors.New("unsupported endpoint type")
	ErrUnsupportedFormat       = errors.New("unsupported RDF format")
	ErrCredentialsKeyMismatch  = errors.New("endpoint credentials were encrypted with a different key")
)

// EndpointError reports a failed call to a dataset endpoint. It names the
// endpoint and the operation so operators can tell which source broke.
type EndpointError struct {
	EndpointID string
	URL        string
	Operation  string
	Err        error
}

func (e *EndpointError) Error() string {
	return fmt.Sprintf("%s failed on endpoint %s (%s): %v", e.Operation, e.EndpointID, e.URL, e.Err)
}

func (e *EndpointError) Unwrap() error {
	return e.Err
}

// AsEndpointError extracts an EndpointError from an error chain.
func AsEndpointError(err error) (*EndpointError, bool) {
	var ee *EndpointError
	if errors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}
