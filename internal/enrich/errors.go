package enrich

import "errors"

var (
	// ErrSourceUnavailable signals an unreachable or timed-out enrichment
	// source. Non-fatal: resolution moves on to the next candidate or layer.
	ErrSourceUnavailable = errors.New("enrichment source unavailable")

	// ErrValidationFailed signals a fetched candidate page that carries
	// neither the trade identifier nor the part number. The page is
	// discarded and never escalates trust.
	ErrValidationFailed = errors.New("candidate page failed identity validation")

	// ErrParseFailure signals an AI or HTML response outside the expected
	// shape. Only that layer's contribution is discarded.
	ErrParseFailure = errors.New("response not in expected shape")
)
