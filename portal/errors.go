package portal

import (
	F "github.com/sagernet/sing/common/format"
)

// NetworkError is a connection or timeout failure talking to the portal,
// or an HTTP error status. StatusCode is zero when no response arrived.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	return F.ToString("request ", e.URL, ": ", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ExtractionError means a page lacks a script, form or variable block the
// login sequence depends on. Expected names the missing structure.
type ExtractionError struct {
	Expected string
	URL      string
	Err      error
}

func (e *ExtractionError) Error() string {
	message := "no " + e.Expected + " found"
	if e.URL != "" {
		message += " in " + e.URL
	}
	if e.Err != nil {
		message += ": " + e.Err.Error()
	}
	return message
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// AuthenticationError carries the error banner rendered by the portal.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return "portal rejected login: " + e.Message
}

type UnexpectedResponseError struct {
	URL string
}

func (e *UnexpectedResponseError) Error() string {
	return "unexpected response from " + e.URL + ", try again"
}
