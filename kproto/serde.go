package kproto

import (
	"github.com/birdayz/ksignal/kserde"
	"google.golang.org/protobuf/proto"
)

// Serializer returns a protobuf serializer for any proto.Message type.
//
// Example:
//
//	serializer := kproto.Serializer[*pb.User]()
func Serializer[T proto.Message]() kserde.Serializer[T] {
	return func(v T) ([]byte, error) {
		return proto.Marshal(v)
	}
}

// Deserializer returns a protobuf deserializer. newFn creates an empty
// message to unmarshal into.
//
// Example:
//
//	deserializer := kproto.Deserializer(func() *pb.User { return &pb.User{} })
func Deserializer[T proto.Message](newFn func() T) kserde.Deserializer[T] {
	return func(data []byte) (T, error) {
		msg := newFn()
		if err := proto.Unmarshal(data, msg); err != nil {
			var zero T
			return zero, err
		}
		return msg, nil
	}
}

// DeserializerFor is like Deserializer but creates messages through
// protoreflect.
func DeserializerFor[T proto.Message]() kserde.Deserializer[T] {
	return func(data []byte) (T, error) {
		var zero T
		msg := zero.ProtoReflect().New().Interface().(T)
		if err := proto.Unmarshal(data, msg); err != nil {
			return zero, err
		}
		return msg, nil
	}
}

// Serde pairs Serializer and DeserializerFor.
func Serde[T proto.Message]() kserde.Serde[T] {
	return kserde.Serde[T]{
		Serializer:   Serializer[T](),
		Deserializer: DeserializerFor[T](),
	}
}
