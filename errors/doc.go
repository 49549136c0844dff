// Package errors provides standardized error handling patterns for kfifo.
//
// # Overview
//
// The errors package implements a three-class error classification system:
// Transient (temporary, retryable), Invalid (bad input, non-retryable), and
// Fatal (unrecoverable, stop processing).
//
// In this module, errors only ever come from construction and teardown paths.
// The fifo data plane never returns errors: short transfers and rejected
// records are reported as counts, because for a non-blocking queue a partial
// transfer is an expected outcome, not a failure.
//
// # Error Classification
//
// Errors are automatically classified based on their type or content:
//
//   - Transient: Temporary conditions such as context timeouts (retry recommended)
//   - Invalid: Malformed input, validation failures, bad configuration (do not retry)
//   - Fatal: Allocation failures, use of freed storage (stop processing)
//
// The classification system integrates with Go's standard error handling,
// supporting errors.Is(), errors.As(), and error wrapping chains.
//
// # Quick Start
//
// Use standard error variables for known conditions:
//
//	if capacity < 2 {
//	    return errors.ErrCapacityTooSmall
//	}
//
// Wrap errors with context for debugging:
//
//	if err := alloc.Alloc(n); err != nil {
//	    return errors.WrapFatal(err, "Fifo", "New", "backing storage allocation")
//	}
//
// Check classification at the call site:
//
//	if _, err := kfifo.New[int](0); err != nil {
//	    if errors.IsInvalid(err) {
//	        // caller bug, fix the requested capacity
//	    }
//	}
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// This format enables consistent log parsing and debugging across the module.
// Three wrapper functions provide classification-aware wrapping:
//
//	errors.WrapTransient(err, "Component", "Method", "action")  // For retryable errors
//	errors.WrapInvalid(err, "Component", "Method", "action")    // For validation errors
//	errors.WrapFatal(err, "Component", "Method", "action")      // For unrecoverable errors
//
// The generic Wrap() function adds context without forcing a class:
//
//	errors.Wrap(err, "Component", "Method", "action")
//
// # Standard Error Variables
//
// Pre-defined error variables cover the module's failure conditions:
//
//   - Construction: ErrCapacityTooSmall, ErrNilBuffer, ErrInvalidHeaderWidth
//   - Storage: ErrAllocationFailed, ErrBufferFreed
//   - Observability: ErrMetricConflict
//
// Use these variables instead of creating custom error messages so callers
// can match conditions with errors.Is().
//
// # Integration with errors.As/Is
//
// All error types support standard library error inspection:
//
//	var ce *errors.ClassifiedError
//	if errors.As(err, &ce) {
//	    log.Printf("Component: %s, Class: %s", ce.Component, ce.Class)
//	}
//
//	if errors.Is(err, errors.ErrCapacityTooSmall) {
//	    // Handle undersized buffers specifically
//	}
//
//	// Classification is preserved through error chains
//	wrapped := errors.WrapInvalid(errors.ErrCapacityTooSmall, "Fifo", "New", "capacity check")
//	errors.IsInvalid(wrapped) // true
//
// # Thread Safety
//
// All classification and wrapping operations are thread-safe. Error variables
// are immutable and safe for concurrent access. The ClassifiedError type is
// safe to share across goroutines after creation.
package errors
