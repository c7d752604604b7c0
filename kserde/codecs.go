package kserde

import (
	"encoding/binary"
	"fmt"
	"math"
)

var String = Serde[string]{
	Serializer: func(data string) ([]byte, error) {
		return []byte(data), nil
	},
	Deserializer: func(data []byte) (string, error) {
		return string(data), nil
	},
}

// Int64 encodes as 8 big-endian bytes.
var Int64 = Serde[int64]{
	Serializer: func(data int64) ([]byte, error) {
		return binary.BigEndian.AppendUint64(nil, uint64(data)), nil
	},
	Deserializer: func(data []byte) (int64, error) {
		if err := wantLen("int64", data, 8); err != nil {
			return 0, err
		}
		return int64(binary.BigEndian.Uint64(data)), nil
	},
}

// Int32 encodes as 4 big-endian bytes.
var Int32 = Serde[int32]{
	Serializer: func(data int32) ([]byte, error) {
		return binary.BigEndian.AppendUint32(nil, uint32(data)), nil
	},
	Deserializer: func(data []byte) (int32, error) {
		if err := wantLen("int32", data, 4); err != nil {
			return 0, err
		}
		return int32(binary.BigEndian.Uint32(data)), nil
	},
}

// Float64 encodes the IEEE 754 bits as 8 big-endian bytes.
var Float64 = Serde[float64]{
	Serializer: func(data float64) ([]byte, error) {
		return binary.BigEndian.AppendUint64(nil, math.Float64bits(data)), nil
	},
	Deserializer: func(data []byte) (float64, error) {
		if err := wantLen("float64", data, 8); err != nil {
			return 0, err
		}
		return math.Float64frombits(binary.BigEndian.Uint64(data)), nil
	},
}

func wantLen(kind string, data []byte, n int) error {
	if len(data) != n {
		return fmt.Errorf("%s deserialization requires exactly %d bytes, got %d", kind, n, len(data))
	}
	return nil
}
