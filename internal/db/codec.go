package db

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// payloadCodec compresses raw provider payloads (SerpAPI responses) before
// they are stored. Raw flight responses run to hundreds of kilobytes of JSON;
// zstd keeps the bytea columns small without losing the original payload for
// later reprocessing.
//
// The encoder and decoder are safe for concurrent use via EncodeAll/DecodeAll.
type payloadCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newPayloadCodec() *payloadCodec {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		// Never fails with nil writer and default options.
		panic(fmt.Sprintf("failed to create zstd encoder: %v", err))
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		panic(fmt.Sprintf("failed to create zstd decoder: %v", err))
	}
	return &payloadCodec{enc: enc, dec: dec}
}

// Compress returns the zstd-compressed form of raw. Nil input yields nil.
func (c *payloadCodec) Compress(raw []byte) []byte {
	if len(raw) == 0 {
		return nil
	}
	return c.enc.EncodeAll(raw, make([]byte, 0, len(raw)/4))
}

// Decompress reverses Compress. Nil input yields nil.
func (c *payloadCodec) Decompress(compressed []byte) ([]byte, error) {
	if len(compressed) == 0 {
		return nil, nil
	}
	return c.dec.DecodeAll(compressed, nil)
}
