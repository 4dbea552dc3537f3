// Package persist provides codecs and atomic file persistence for
// serializable values.
package persist

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// File extensions for supported codecs.
const (
	gobExtension = ".gob"
	lz4Suffix    = ".lz4"
)

// ErrNilCodec is returned when a compressing codec has no inner codec.
var ErrNilCodec = errors.New("persist: nil inner codec")

// Codec defines how a value is serialized and deserialized.
type Codec interface {
	// Encode writes v to w.
	Encode(w io.Writer, v any) error
	// Decode reads into v, which must be a pointer.
	Decode(r io.Reader, v any) error
	// Extension returns the file extension for this codec.
	Extension() string
}

// GobCodec implements Codec using gob encoding.
type GobCodec struct{}

// NewGobCodec creates a gob codec.
func NewGobCodec() *GobCodec {
	return &GobCodec{}
}

// Encode implements Codec.
func (c *GobCodec) Encode(w io.Writer, v any) error {
	err := gob.NewEncoder(w).Encode(v)
	if err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}

	return nil
}

// Decode implements Codec.
func (c *GobCodec) Decode(r io.Reader, v any) error {
	err := gob.NewDecoder(r).Decode(v)
	if err != nil {
		return fmt.Errorf("gob decode: %w", err)
	}

	return nil
}

// Extension implements Codec.
func (c *GobCodec) Extension() string {
	return gobExtension
}

// LZ4Codec wraps another codec in an LZ4 frame.
type LZ4Codec struct {
	Inner Codec
}

// NewLZ4Codec creates an LZ4 codec around inner.
func NewLZ4Codec(inner Codec) *LZ4Codec {
	return &LZ4Codec{Inner: inner}
}

// Encode implements Codec.
func (c *LZ4Codec) Encode(w io.Writer, v any) error {
	if c.Inner == nil {
		return ErrNilCodec
	}

	zw := lz4.NewWriter(w)

	encErr := c.Inner.Encode(zw, v)
	if encErr != nil {
		return encErr
	}

	closeErr := zw.Close()
	if closeErr != nil {
		return fmt.Errorf("lz4 close: %w", closeErr)
	}

	return nil
}

// Decode implements Codec. Frame corruption surfaces as a decode error.
func (c *LZ4Codec) Decode(r io.Reader, v any) error {
	if c.Inner == nil {
		return ErrNilCodec
	}

	err := c.Inner.Decode(lz4.NewReader(r), v)
	if err != nil {
		return fmt.Errorf("lz4: %w", err)
	}

	return nil
}

// Extension implements Codec.
func (c *LZ4Codec) Extension() string {
	if c.Inner == nil {
		return lz4Suffix
	}

	return c.Inner.Extension() + lz4Suffix
}
