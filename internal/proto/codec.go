// Package proto defines the EscrowService wire contract: message types,
// the service descriptor, a client stub and the JSON codec both sides use.
//
// Messages are plain Go structs carried as JSON. Well-known protobuf types
// (emptypb, wrapperspb) go through protojson so that their JSON form matches
// the canonical protobuf mapping.
package proto

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/mem"
	"google.golang.org/protobuf/encoding/protojson"
	protov2 "google.golang.org/protobuf/proto"
)

// CodecName is the gRPC content-subtype of the JSON codec.
const CodecName = "json"

func init() {
	encoding.RegisterCodecV2(Codec{})
}

// Codec implements encoding.CodecV2.
type Codec struct{}

func (Codec) Name() string { return CodecName }

func (Codec) Marshal(v any) (mem.BufferSlice, error) {
	var (
		b   []byte
		err error
	)
	if m, ok := v.(protov2.Message); ok {
		b, err = protojson.Marshal(m)
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return nil, err
	}
	return mem.BufferSlice{mem.SliceBuffer(b)}, nil
}

func (Codec) Unmarshal(data mem.BufferSlice, v any) error {
	b := data.Materialize()
	if m, ok := v.(protov2.Message); ok {
		return protojson.Unmarshal(b, m)
	}
	return json.Unmarshal(b, v)
}
