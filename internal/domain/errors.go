// Package domain provides shared domain-level sentinel errors.
package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation indicates a malformed or semantically invalid request.
var ErrValidation = errors.New("validation failed")

// ErrInvalidConfig indicates an agent configuration outside the allowed
// ranges (temperature, max_tokens) or a model id the provider does not serve.
var ErrInvalidConfig = errors.New("invalid agent configuration")

// ErrUnsupportedModel is a specialization of ErrInvalidConfig for model ids
// missing from the provider's supported-model list.
var ErrUnsupportedModel = fmt.Errorf("%w: unsupported model", ErrInvalidConfig)

// ErrUnsupportedProvider indicates no adapter is registered for the
// requested model provider.
var ErrUnsupportedProvider = errors.New("unsupported model provider")

// ErrAgentBusy indicates a generation was requested while another generation
// holds the agent. At most one generation is in flight per agent id.
var ErrAgentBusy = errors.New("agent is busy")

// ErrProviderUnavailable indicates the provider call failed after all
// retries (network error, timeout, or provider-side failure).
var ErrProviderUnavailable = errors.New("provider unavailable")

// ErrCapacityExceeded indicates the store's configured item bound was
// reached and the backend rejects inserts instead of evicting.
var ErrCapacityExceeded = errors.New("store capacity exceeded")

// ErrConflict indicates a concurrent modification conflict (a
// compare-and-swap observed a different value than expected).
var ErrConflict = errors.New("conflict: resource was modified by another request")
