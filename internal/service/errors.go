package service

import "errors"

// ErrDenied is returned when the access policy refuses a command. The HTTP
// layer turns it into a redirect rather than an error response.
var ErrDenied = errors.New("permission denied")
