package kproto

import (
	"fmt"

	"github.com/birdayz/ksignal"
	"github.com/bufbuild/protovalidate-go"
	"google.golang.org/protobuf/proto"
)

// ValidationError wraps a protovalidate failure with the signal that
// rejected the message.
type ValidationError struct {
	Signal  string
	Message proto.Message
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed at %s for %s: %v",
		e.Signal, e.Message.ProtoReflect().Descriptor().FullName(), e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate creates a target of s that forwards proto messages passing
// protovalidate and raises a *ValidationError for the others. Values that
// are not proto messages are forwarded unchanged.
//
// Example:
//
//	valid := kproto.Validate(users)
func Validate(s *ksignal.Signal) *ksignal.Signal {
	validator, err := protovalidate.New()
	if err != nil {
		panic(fmt.Sprintf("failed to create protovalidate validator: %v", err))
	}
	return ValidateWith(s, validator)
}

// ValidateWith is like Validate with a pre-configured validator.
//
// Example:
//
//	validator, _ := protovalidate.New(protovalidate.WithFailFast(true))
//	valid := kproto.ValidateWith(users, validator)
func ValidateWith(s *ksignal.Signal, validator *protovalidate.Validator) *ksignal.Signal {
	return s.Then(func(t *ksignal.Signal, v any, _ ...any) error {
		msg, ok := v.(proto.Message)
		if !ok {
			t.Put(v)
			return nil
		}
		if err := validator.Validate(msg); err != nil {
			return &ValidationError{Signal: t.String(), Message: msg, Err: err}
		}
		t.Put(msg)
		return nil
	})
}
