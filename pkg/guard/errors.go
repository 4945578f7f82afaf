package guard

import (
	"fmt"

	"github.com/helmcode/laze/pkg/model"
)

// IgnoredError reports a failure that was not searched for.
type IgnoredError struct {
	Signature model.FailureSignature
}

func (e *IgnoredError) Error() string {
	return fmt.Sprintf("ignored failure: %s", e.Signature.Category)
}

// SearchedError reports a failure whose search results were presented. Err
// is the original failure when there was one.
type SearchedError struct {
	Signature model.FailureSignature
	Err       error
}

func (e *SearchedError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Signature.Category == "" {
		return e.Signature.Message
	}
	return e.Signature.Category + ":" + e.Signature.Message
}

func (e *SearchedError) Unwrap() error {
	return e.Err
}

// HelperError is a failure of the search pipeline itself.
type HelperError struct {
	Err error
}

func (e *HelperError) Error() string {
	return fmt.Sprintf("searching for a solution failed: %v", e.Err)
}

func (e *HelperError) Unwrap() error {
	return e.Err
}

// PanicError is a recovered panic.
type PanicError struct {
	Value any
	err   error
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func (e *PanicError) Unwrap() error {
	return e.err
}
