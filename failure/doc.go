// Package failure provides the structured error type used across the generator.
//
// Every error is tagged with the Stage it happened in and a Kind. The type
// name and path locate the offending declaration or sample value:
//
//	err := failure.New(failure.StageTrace, failure.KindInvalidVariant).
//		Type("TransactionError").
//		Path("status", "Err").
//		Detail("unknown variant %q", name).
//		Build()
//
// All errors support errors.Is against another *Error with the same stage and
// kind, and errors.As/Unwrap to reach the cause.
package failure
