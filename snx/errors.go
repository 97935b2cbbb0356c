package snx

import (
	F "github.com/sagernet/sing/common/format"
)

// LayoutError reports a record whose encoded size disagrees with its length
// field. It means the helper's record format moved and this encoder is stale.
type LayoutError struct {
	Declared uint32
	Actual   int
}

func (e *LayoutError) Error() string {
	return F.ToString("handshake record layout drift: length field ", e.Declared, " + 8 != encoded ", e.Actual, " bytes")
}

// ProcessError reports the helper exiting non-zero before it forked.
type ProcessError struct {
	Path     string
	ExitCode int
	Output   string
}

func (e *ProcessError) Error() string {
	message := F.ToString("tunnel helper ", e.Path, " terminated with exit code ", e.ExitCode)
	if e.Output != "" {
		message += ": " + e.Output
	}
	return message
}
