package resolve

import "errors"

// Stage-local failure taxonomy. Every one of these is recovered by
// falling through to the next stage; none escapes the orchestrator.
var (
	// ErrCacheMiss is returned by cache stores when no entry exists.
	ErrCacheMiss = errors.New("cache miss")

	// ErrBlocked signals a bot-challenge page instead of content.
	ErrBlocked = errors.New("blocked by target")

	// ErrNoIdentifier means no catalog identifier could be extracted,
	// so the marketplace stage is skipped rather than attempted.
	ErrNoIdentifier = errors.New("no identifier extractable")

	// ErrQuotaExceeded signals an upstream API rejected the call for
	// rate or quota reasons.
	ErrQuotaExceeded = errors.New("upstream quota exceeded")

	// ErrMalformedResponse signals unparseable upstream HTML or JSON.
	ErrMalformedResponse = errors.New("malformed response")
)
