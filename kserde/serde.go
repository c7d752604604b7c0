package kserde

import (
	"fmt"
	"reflect"

	"github.com/birdayz/ksignal"
)

type Serde[T any] struct {
	Serializer   Serializer[T]
	Deserializer Deserializer[T]
}

type Serializer[T any] func(T) ([]byte, error)

type Deserializer[T any] func([]byte) (T, error)

// TypeError is raised by Encode when a value does not have the type the
// serializer expects.
type TypeError struct {
	Want string
	Got  any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("kserde: expected %s, got %T", e.Want, e.Got)
}

// NewTypeError reports that got is not a T. Interface types are named by
// the interface, not by a nil value.
func NewTypeError[T any](got any) *TypeError {
	return &TypeError{Want: reflect.TypeOf((*T)(nil)).Elem().String(), Got: got}
}

// Encode creates a target of s that serializes every value with ser and puts
// the bytes. Values of the wrong type and serializer failures are raised at
// the target.
//
// Example:
//
//	raw := kserde.Encode(names, kserde.String.Serializer)
func Encode[T any](s *ksignal.Signal, ser Serializer[T]) *ksignal.Signal {
	return s.Then(func(t *ksignal.Signal, v any, _ ...any) error {
		typed, ok := v.(T)
		if !ok {
			return NewTypeError[T](v)
		}
		data, err := ser(typed)
		if err != nil {
			return err
		}
		t.Put(data)
		return nil
	})
}

// Decode creates a target of s that deserializes every []byte value with de
// and puts the result. Failures are raised at the target.
func Decode[T any](s *ksignal.Signal, de Deserializer[T]) *ksignal.Signal {
	return s.Then(func(t *ksignal.Signal, v any, _ ...any) error {
		data, ok := v.([]byte)
		if !ok {
			return &TypeError{Want: "[]byte", Got: v}
		}
		out, err := de(data)
		if err != nil {
			return err
		}
		t.Put(out)
		return nil
	})
}
