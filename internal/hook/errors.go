package hook

import "errors"

// Error taxonomy. Classification and enrichment failures degrade to fallback
// values and never appear here; only configuration, validation, payload-read,
// and publish failures are escalated to the invoking shell.
var (
	// ErrConfiguration marks required connection parameters as absent.
	ErrConfiguration = errors.New("configuration error")

	// ErrValidation marks an unrecognized event kind or empty session key,
	// reported before any side effect occurs.
	ErrValidation = errors.New("validation error")

	// ErrPayloadRead marks a hard failure reading the payload source. A
	// payload that reads fine but fails to parse is recovered locally with
	// an empty object and never produces this error.
	ErrPayloadRead = errors.New("payload read error")

	// ErrPublish marks a rejected or unreachable publish sink, the only
	// failure possible after envelope construction.
	ErrPublish = errors.New("publish error")
)

// Exit codes exposed to the invoking shell, one per taxonomy entry.
const (
	ExitOK            = 0
	ExitValidation    = 2
	ExitPublish       = 3
	ExitPayload       = 4
	ExitConfiguration = 5
)

// ExitCode maps an error from Process (or setup) to its shell exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrValidation):
		return ExitValidation
	case errors.Is(err, ErrPublish):
		return ExitPublish
	case errors.Is(err, ErrPayloadRead):
		return ExitPayload
	case errors.Is(err, ErrConfiguration):
		return ExitConfiguration
	default:
		return 1
	}
}
