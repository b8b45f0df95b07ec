// Package errors provides the structured error handling used across equipset.
//
// It provides:
//   - Structured errors with codes, messages, and metadata
//   - Error context preservation through wrapping
//   - Validation error helpers for Config.Validate implementations
//   - Type-safe error checking
//
// # Basic Usage
//
// Creating errors:
//
//	err := errors.NotFound("item set not found")
//	err := errors.InvalidArgumentf("slot %d out of range", slot)
//
// Adding metadata:
//
//	err := errors.NotFound("item set not found").
//	    WithMeta("category", category.Name()).
//	    WithMeta("label", label)
//
// Wrapping errors:
//
//	if err := repo.Get(ctx, input); err != nil {
//	    return errors.Wrap(err, "failed to get loadout")
//	}
//
// # Error Checking
//
//	if errors.IsNotFound(err) {
//	    // treat as an empty loadout
//	}
//
// # Validation Errors
//
// Using the validation builder:
//
//	vb := errors.NewValidationBuilder()
//	if cfg.Store == nil {
//	    vb.RequiredField("Store")
//	}
//	if err := vb.Build(); err != nil {
//	    return err
//	}
//
// # Layer-Specific Guidelines
//
// Repository layer:
//   - Return domain-specific errors (NotFound, AlreadyExists)
//   - Include relevant IDs in metadata
//   - Wrap redis errors with context
//
// Orchestrator layer:
//   - Validate inputs and return InvalidArgument errors
//   - Check preconditions and return FailedPrecondition errors
//   - Wrap repository errors with business context
//
// Resolution engine:
//   - Lookup misses return nil sentinels, not errors; errors are reserved
//     for configuration and persistence boundaries
package errors

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return GetCode(err) == CodeNotFound
}

// IsInvalidArgument checks if an error is an invalid argument error
func IsInvalidArgument(err error) bool {
	return GetCode(err) == CodeInvalidArgument
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return GetCode(err) == CodeAlreadyExists
}

// IsInternal checks if an error is an internal error
func IsInternal(err error) bool {
	return GetCode(err) == CodeInternal
}

// IsFailedPrecondition checks if an error is a failed precondition error
func IsFailedPrecondition(err error) bool {
	return GetCode(err) == CodeFailedPrecondition
}

// IsOutOfRange checks if an error is an out of range error
func IsOutOfRange(err error) bool {
	return GetCode(err) == CodeOutOfRange
}

// IsUnavailable checks if an error is an unavailable error
func IsUnavailable(err error) bool {
	return GetCode(err) == CodeUnavailable
}
