package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Magic prefixes every packed payload.
var Magic = []byte("PLN1")

// MaxDecodedSize bounds the size of an unpacked payload.
const MaxDecodedSize = 64 << 20

// ErrNotPacked is returned by Unpack for data without the Magic prefix.
var ErrNotPacked = errors.New("not a packed payload")

var (
	encoder *zstd.Encoder
	decoder *zstd.Decoder
)

func init() {
	var err error
	encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic(fmt.Sprintf("codec: create zstd encoder: %v", err))
	}
	decoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxDecodedSize))
	if err != nil {
		panic(fmt.Sprintf("codec: create zstd decoder: %v", err))
	}
}

// Pack encodes v as JSON and compresses it.
func Pack(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("pack: %w", err)
	}
	out := make([]byte, 0, len(Magic)+len(raw)/2)
	out = append(out, Magic...)
	return encoder.EncodeAll(raw, out), nil
}

// Unpack decodes data produced by Pack into v.
func Unpack(data []byte, v any) error {
	raw, err := UnpackRaw(data)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("unpack: %w", err)
	}
	return nil
}

// UnpackRaw returns the JSON document inside data without decoding it.
func UnpackRaw(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, Magic) {
		return nil, ErrNotPacked
	}
	raw, err := decoder.DecodeAll(data[len(Magic):], nil)
	if err != nil {
		return nil, fmt.Errorf("unpack: decompress: %w", err)
	}
	return raw, nil
}
