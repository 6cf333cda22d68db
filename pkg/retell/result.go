package retell

import "fmt"

// Tag is the symbolic type tag carried by every Result.
type Tag string

// Tags produced by the operations in this module.
const (
	TagAPIResponse        Tag = "api_response"
	TagAPIError           Tag = "api_error"
	TagNetworkError       Tag = "network_error"
	TagUnexpectedError    Tag = "unexpected_error"
	TagInvalidPhoneNumber Tag = "invalid_phone_number"
	TagInvalidCredentials Tag = "invalid_credentials"
	TagValidPhoneNumber   Tag = "valid_phone_number"
)

// Result is the outcome of an operation: either a Success holding a value or a
// Failure holding a Problem. Exactly one variant is live and the zero Result is
// not valid; build one with Success or Failure.
type Result[T any] struct {
	tag     Tag
	value   T
	problem Problem
	failed  bool
}

// Success builds a successful Result. It panics when tag is empty.
func Success[T any](tag Tag, value T) Result[T] {
	mustTag("Success", tag)

	return Result[T]{tag: tag, value: value}
}

// Failure builds a failed Result. It panics when tag is empty or problem is nil.
func Failure[T any](tag Tag, problem Problem) Result[T] {
	mustTag("Failure", tag)

	if problem == nil {
		panic("retell: Failure requires a non-nil problem")
	}

	return Result[T]{tag: tag, problem: problem, failed: true}
}

func mustTag(constructor string, tag Tag) {
	if tag == "" {
		panic(fmt.Sprintf("retell: %s requires a non-empty tag", constructor))
	}
}

// IsSuccess reports whether r is a Success.
func (r Result[T]) IsSuccess() bool {
	return !r.failed
}

// IsFailure reports whether r is a Failure.
func (r Result[T]) IsFailure() bool {
	return r.failed
}

// Tag returns the symbolic tag chosen by the producer.
func (r Result[T]) Tag() Tag {
	return r.tag
}

// Value returns the success value. The boolean is false for a Failure.
func (r Result[T]) Value() (T, bool) {
	if r.failed {
		var zero T

		return zero, false
	}

	return r.value, true
}

// Problem returns the failure payload, or nil for a Success.
func (r Result[T]) Problem() Problem {
	return r.problem
}

// Unwrap converts r into Go's (value, error) convention.
func (r Result[T]) Unwrap() (T, error) {
	if r.failed {
		var zero T

		return zero, r.problem
	}

	return r.value, nil
}

// Map applies fn to the value of a Success and keeps the tag. A Failure is
// returned unchanged.
func (r Result[T]) Map(fn func(T) T) Result[T] {
	if r.failed {
		return r
	}

	return Success(r.tag, fn(r.value))
}

// Bind hands the value of a Success to fn and returns fn's Result as is. A
// Failure is returned unchanged.
func (r Result[T]) Bind(fn func(T) Result[T]) Result[T] {
	if r.failed {
		return r
	}

	return fn(r.value)
}

// OnSuccess calls fn with the value when r is a Success.
func (r Result[T]) OnSuccess(fn func(T)) Result[T] {
	if !r.failed {
		fn(r.value)
	}

	return r
}

// OnFailure calls fn with the problem when r is a Failure.
func (r Result[T]) OnFailure(fn func(Problem)) Result[T] {
	if r.failed {
		fn(r.problem)
	}

	return r
}

// Match dispatches on the live variant.
func (r Result[T]) Match(onSuccess func(Tag, T), onFailure func(Tag, Problem)) {
	if r.failed {
		onFailure(r.tag, r.problem)

		return
	}

	onSuccess(r.tag, r.value)
}

// Deconstruct returns the (tag, payload) pair. The payload is the value for a
// Success and the Problem for a Failure.
func (r Result[T]) Deconstruct() (Tag, any) {
	if r.failed {
		return r.tag, r.problem
	}

	return r.tag, r.value
}

// Fields returns the keyed form of Deconstruct: "type" plus "value" or "error".
func (r Result[T]) Fields() map[string]any {
	if r.failed {
		return map[string]any{"type": r.tag, "error": r.problem}
	}

	return map[string]any{"type": r.tag, "value": r.value}
}

// String implements fmt.Stringer.
func (r Result[T]) String() string {
	if r.failed {
		return fmt.Sprintf("Failure[%s](%v)", r.tag, r.problem)
	}

	return fmt.Sprintf("Success[%s](%v)", r.tag, r.value)
}

// Map is the type-changing form of Result.Map.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if r.failed {
		return Failure[U](r.tag, r.problem)
	}

	return Success(r.tag, fn(r.value))
}

// Bind is the type-changing form of Result.Bind.
func Bind[T, U any](r Result[T], fn func(T) Result[U]) Result[U] {
	if r.failed {
		return Failure[U](r.tag, r.problem)
	}

	return fn(r.value)
}
