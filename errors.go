package beatkeeper

import "github.com/relaypulse/beatkeeper/internal/model"

// Error kinds surfaced by this package. These alias internal/model's Kind
// constants so callers never need to import an internal package to do
// errors.Is-style matching.
const (
	KindBadRegistration       = model.KindBadRegistration
	KindCapacityExhausted     = model.KindCapacityExhausted
	KindMissingRecord         = model.KindMissingRecord
	KindEmptyRoster           = model.KindEmptyRoster
	KindChannelSendFailure    = model.KindChannelSendFailure
	KindChannelReceiveFailure = model.KindChannelReceiveFailure
	KindReplyTimeout          = model.KindReplyTimeout
	KindProtocolViolation     = model.KindProtocolViolation
	KindNothingNewToReport    = model.KindNothingNewToReport
	KindIO                    = model.KindIO
	KindUtf8                  = model.KindUtf8
	KindEnvVarMissing         = model.KindEnvVarMissing
	KindHTTPClient            = model.KindHTTPClient
)

// Kind is the category tag on every error this package returns.
type Kind = model.Kind

// Error is the concrete error type returned by this package's operations.
// Use errors.As to recover one, or IsKind to check its category directly.
type Error = model.Error

// IsKind reports whether err is a *Error of the given Kind.
func IsKind(err error, kind Kind) bool {
	return model.Is(err, kind)
}
