package supervisorctl

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodec lets this internal admin service exchange plain Go structs over
// gRPC without a protoc-compiled message set: the messages in messages.go
// are never generated from a .proto file, so the usual
// google.golang.org/protobuf marshaler has nothing to work with here. gRPC's
// encoding.Codec interface is exactly the seam designed for this.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return codecName
}

const codecName = "supervisorctl-json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
