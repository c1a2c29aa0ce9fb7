package storage

import (
	"bytes"
	"errors"
	"fmt"
	"github.com/klauspost/compress/zstd"
)

// maxSnapshotSize bounds a decoded credential snapshot. A handful of keys
// never comes close; anything larger is a corrupt or foreign file.
const maxSnapshotSize = 1 << 20

var (
	ErrSnapshotTooLarge = errors.New("credential snapshot exceeds size limit")
	ErrNotSnapshotFrame = errors.New("credential snapshot is not a zstd frame")
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// SnapshotCodec turns a serialized store snapshot into the frame that gets
// sealed on disk, and back.
type SnapshotCodec interface {
	Encode(snapshot []byte) ([]byte, error)
	Decode(frame []byte) ([]byte, error)
	Close()
}

type zstdCodec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewSnapshotCodec returns a single-goroutine zstd codec. Snapshots are tiny
// and written rarely, so it favours ratio over speed.
func NewSnapshotCodec() (SnapshotCodec, error) {
	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot codec: encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(maxSnapshotSize),
	)
	if err != nil {
		_ = encoder.Close()
		return nil, fmt.Errorf("snapshot codec: decoder: %w", err)
	}
	return &zstdCodec{encoder: encoder, decoder: decoder}, nil
}

func (c *zstdCodec) Encode(snapshot []byte) ([]byte, error) {
	if len(snapshot) > maxSnapshotSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrSnapshotTooLarge, len(snapshot))
	}
	return c.encoder.EncodeAll(snapshot, nil), nil
}

func (c *zstdCodec) Decode(frame []byte) ([]byte, error) {
	if !bytes.HasPrefix(frame, zstdMagic) {
		return nil, ErrNotSnapshotFrame
	}
	out, err := c.decoder.DecodeAll(frame, nil)
	if errors.Is(err, zstd.ErrDecoderSizeExceeded) {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotTooLarge, err)
	}
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return out, nil
}

func (c *zstdCodec) Close() {
	_ = c.encoder.Close()
	c.decoder.Close()
}
