package grpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// codecName content-subtype: application/grpc+json
const codecName = "json"

// jsonCodec сообщения сервиса это обычные Go структуры, по проводу идёт JSON
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

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
