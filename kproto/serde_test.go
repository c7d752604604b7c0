package kproto

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/birdayz/ksignal"
	"github.com/birdayz/ksignal/kserde"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestDeserializer(t *testing.T) {
	data, err := proto.Marshal(wrapperspb.String("test value"))
	assert.NoError(t, err)

	decoded, err := Deserializer(func() *wrapperspb.StringValue {
		return &wrapperspb.StringValue{}
	})(data)
	assert.NoError(t, err)
	assert.Equal(t, "test value", decoded.GetValue())

	_, err = DeserializerFor[*wrapperspb.StringValue]()([]byte{0xFF, 0xFF, 0xFF})
	assert.Error(t, err)
}

func TestSerdeInChain(t *testing.T) {
	g := ksignal.NewGraph()
	src := g.New()
	serde := Serde[*wrapperspb.Int64Value]()

	var got []int64
	kserde.Decode(kserde.Encode(src, serde.Serializer), serde.Deserializer).
		Then(func(_ *ksignal.Signal, v any, _ ...any) error {
			got = append(got, v.(*wrapperspb.Int64Value).GetValue())
			return nil
		})

	src.Put(wrapperspb.Int64(42))
	src.Put(wrapperspb.Int64(-7))
	assert.Equal(t, []int64{42, -7}, got)
}
