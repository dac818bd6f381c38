// Package snapshot turns a cosmos into bytes and back.
//
// A snapshot is a fixed header followed by an lz4 frame holding the gob
// encoding of cosmos.Snapshot:
//
//	magic    [4]byte "CSNP"
//	version  uint16
//	rawLen   uint32  length of the gob payload before compression
//	checksum uint64  xxhash of the gob payload
//	payload  []byte  lz4 frame
package snapshot

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/pierrec/lz4/v4"

	"github.com/zeusync/cosmos/internal/core/cosmos"
	"github.com/zeusync/cosmos/pkg/generic"
)

const (
	Version uint16 = 1

	headerSize = 4 + 2 + 4 + 8

	// MaxRawSize bounds the decompressed payload a peer may announce.
	MaxRawSize = 64 << 20
)

var magic = [4]byte{'C', 'S', 'N', 'P'}

var (
	ErrTooShort           = errors.New("snapshot too short")
	ErrBadMagic           = errors.New("snapshot magic mismatch")
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	ErrChecksumMismatch   = errors.New("snapshot checksum mismatch")
	ErrTooLarge           = errors.New("snapshot exceeds size limit")
)

type header struct {
	version  uint16
	rawLen   uint32
	checksum uint64
}

func (h header) put(dst []byte) {
	copy(dst[0:4], magic[:])
	binary.BigEndian.PutUint16(dst[4:6], h.version)
	binary.BigEndian.PutUint32(dst[6:10], h.rawLen)
	binary.BigEndian.PutUint64(dst[10:18], h.checksum)
}

func readHeader(data []byte) (header, error) {
	if len(data) < headerSize {
		return header{}, ErrTooShort
	}
	if !bytes.Equal(data[0:4], magic[:]) {
		return header{}, ErrBadMagic
	}
	h := header{
		version:  binary.BigEndian.Uint16(data[4:6]),
		rawLen:   binary.BigEndian.Uint32(data[6:10]),
		checksum: binary.BigEndian.Uint64(data[10:18]),
	}
	if h.version != Version {
		return header{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.version)
	}
	if h.rawLen > MaxRawSize {
		return header{}, fmt.Errorf("%w: %d bytes", ErrTooLarge, h.rawLen)
	}
	return h, nil
}

var buffers = generic.NewPool(func() *bytes.Buffer {
	return new(bytes.Buffer)
}, (*bytes.Buffer).Reset)

// encodeRaw gob-encodes s into a pooled buffer. The caller hands the buffer
// back once it is done with the bytes.
func encodeRaw(s *cosmos.Snapshot) (*bytes.Buffer, error) {
	buf := buffers.Get()
	if err := gob.NewEncoder(buf).Encode(s); err != nil {
		buffers.Put(buf)
		return nil, fmt.Errorf("gob encode: %w", err)
	}
	return buf, nil
}

// Encode serializes the significant state of c.
func Encode(c *cosmos.Cosmos) ([]byte, error) {
	buf, err := encodeRaw(c.Export())
	if err != nil {
		return nil, err
	}
	defer buffers.Put(buf)
	raw := buf.Bytes()

	out := bytes.NewBuffer(make([]byte, headerSize, headerSize+len(raw)/2))
	zw := lz4.NewWriter(out)
	if _, err = zw.Write(raw); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if err = zw.Close(); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}

	data := out.Bytes()
	header{
		version:  Version,
		rawLen:   uint32(len(raw)),
		checksum: xxhash.Sum64(raw),
	}.put(data)

	return data, nil
}

// Decode rebuilds a cosmos from data produced by Encode.
func Decode(data []byte) (*cosmos.Cosmos, error) {
	h, err := readHeader(data)
	if err != nil {
		return nil, err
	}

	raw := make([]byte, h.rawLen)
	zr := lz4.NewReader(bytes.NewReader(data[headerSize:]))
	if _, err = io.ReadFull(zr, raw); err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}

	if xxhash.Sum64(raw) != h.checksum {
		return nil, ErrChecksumMismatch
	}

	var s cosmos.Snapshot
	if err = gob.NewDecoder(bytes.NewReader(raw)).Decode(&s); err != nil {
		return nil, fmt.Errorf("gob decode: %w", err)
	}

	return cosmos.Import(&s)
}

// Restore decodes data and assigns the result to dst.
// dst is left untouched when decoding fails.
func Restore(dst *cosmos.Cosmos, data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	dst.AssignFrom(decoded)
	return nil
}

// Checksum hashes the significant state of c. Two cosmoi that compare equal
// produce the same checksum, so peers can exchange it to detect desyncs.
func Checksum(c *cosmos.Cosmos) (uint64, error) {
	buf, err := encodeRaw(c.Export())
	if err != nil {
		return 0, err
	}
	defer buffers.Put(buf)
	return xxhash.Sum64(buf.Bytes()), nil
}
