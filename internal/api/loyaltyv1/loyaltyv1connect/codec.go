package loyaltyv1connect

import (
	"encoding/json"
	"fmt"
)

// JSONCodec marshals plain Go messages for connect. It registers under the
// "json" name so both the Connect protocol's application/json and gRPC's
// application/grpc+json content types resolve to it.
type JSONCodec struct{}

// Name implements connect.Codec
func (JSONCodec) Name() string { return "json" }

// Marshal implements connect.Codec
func (JSONCodec) Marshal(message any) ([]byte, error) {
	data, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", message, err)
	}
	return data, nil
}

// Unmarshal implements connect.Codec. An empty body decodes to the zero message.
func (JSONCodec) Unmarshal(data []byte, message any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, message); err != nil {
		return fmt.Errorf("failed to unmarshal %T: %w", message, err)
	}
	return nil
}
