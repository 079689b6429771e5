package messages

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var (
	zstdOnce    sync.Once
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	zstdErr     error
)

func codecs() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEncoder, zstdErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if zstdErr != nil {
			return
		}
		zstdDecoder, zstdErr = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(1<<20))
	})
	return zstdEncoder, zstdDecoder, zstdErr
}

// SerializeMessage encodes an event and its payload into an envelope.
// A nil payload produces an envelope without data.
func SerializeMessage(event string, payload interface{}) ([]byte, error) {
	env := Envelope{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %v", event, err)
		}
		env.Data = data
	}
	b, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %v", err)
	}
	return b, nil
}

// DeserializeMessage decodes an envelope. The payload is left raw for the
// handler of the event to decode.
func DeserializeMessage(b []byte) (*Envelope, error) {
	env := &Envelope{}
	if err := json.Unmarshal(b, env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal envelope: %v", err)
	}
	if env.Event == "" {
		return nil, fmt.Errorf("envelope has no event")
	}
	return env, nil
}

// Compress compresses a serialized message with zstd.
func Compress(b []byte) ([]byte, error) {
	enc, _, err := codecs()
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %v", err)
	}
	return enc.EncodeAll(b, make([]byte, 0, len(b))), nil
}

// Decompress reverses Compress.
func Decompress(b []byte) ([]byte, error) {
	_, dec, err := codecs()
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %v", err)
	}
	out, err := dec.DecodeAll(b, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress message: %v", err)
	}
	return out, nil
}

// DecodePayload unmarshals the data of an envelope into v.
func DecodePayload(env *Envelope, v interface{}) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("%s has no payload", env.Event)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s payload: %v", env.Event, err)
	}
	return nil
}
