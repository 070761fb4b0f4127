/*
author: akashmaji
email: akashmaji@iisc.ac.in
file: respkv/internal/respio/reader.go
*/

// Package respio implements the buffered byte reader shared by the RESP
// codec and the RDB decoder. It exposes a small set of primitive reads
// (bytes, little-endian integers, delimited lines) over a growable buffer,
// fed by one of two concrete sources: a stream (TCP connection) or a file.
package respio

import (
	"bytes"
	"encoding/binary"
	"io"
)

// source is the fill contract each concrete reader satisfies: one read
// into the tail of the shared buffer, returning how many bytes landed.
// A clean EOF is reported as (0, nil), never as an error — callers that
// need to distinguish "nothing more to read right now" from "the peer
// went away" do so via FillBuf, which turns a zero-byte fill into
// io.ErrUnexpectedEOF.
type source interface {
	tryFill(dst []byte) (int, error)
}

// Reader is a growable-buffer byte reader. It owns its buffer outright;
// reads into it happen only inside TryFillBuf, and consumption only
// happens inside the primitive readers below, so there is never a point
// where the buffer is aliased by two in-flight operations.
type Reader struct {
	src source
	buf []byte
}

func newReader(src source) *Reader {
	return &Reader{src: src}
}

// NewStreamReader wraps any io.Reader (typically a net.Conn) for RESP
// decoding.
func NewStreamReader(r io.Reader) *Reader {
	return newReader(&streamSource{r: r})
}

// NewFileReader wraps an io.ReaderAt (typically *os.File) for RDB
// decoding, tracking its own read cursor rather than relying on the
// file's shared seek position.
func NewFileReader(r io.ReaderAt) *Reader {
	return newReader(&fileSource{r: r})
}

type streamSource struct {
	r io.Reader
}

func (s *streamSource) tryFill(dst []byte) (int, error) {
	n, err := s.r.Read(dst)
	if err == io.EOF {
		err = nil
	}
	return n, err
}

type fileSource struct {
	r      io.ReaderAt
	offset int64
}

func (s *fileSource) tryFill(dst []byte) (int, error) {
	n, err := s.r.ReadAt(dst, s.offset)
	s.offset += int64(n)
	if err == io.EOF {
		err = nil
	}
	return n, err
}

// growChunk is how much spare tail capacity a reserve tops the buffer up
// to once it dips below minSpare; the RDB/RESP streams this reader feeds
// are read in bursts, so one large reservation amortizes far better than
// growing byte by byte.
const (
	minSpare  = 1024
	growChunk = 1024 * 1024
)

func (r *Reader) reserve() {
	if cap(r.buf)-len(r.buf) >= minSpare {
		return
	}
	grown := make([]byte, len(r.buf), len(r.buf)+growChunk)
	copy(grown, r.buf)
	r.buf = grown
}

// TryFillBuf issues a single read into the buffer's tail and returns the
// number of bytes appended. It never blocks waiting for more than one
// underlying read call, and a return of (0, nil) just means the source
// had nothing to offer this call — not necessarily end of stream.
func (r *Reader) TryFillBuf() (int, error) {
	r.reserve()
	n, err := r.src.tryFill(r.buf[len(r.buf):cap(r.buf)])
	r.buf = r.buf[:len(r.buf)+n]
	return n, err
}

// FillBuf wraps TryFillBuf and turns a zero-byte fill into
// io.ErrUnexpectedEOF, the error every primitive reader propagates when
// the source is exhausted mid-frame.
func (r *Reader) FillBuf() (int, error) {
	n, err := r.TryFillBuf()
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, io.ErrUnexpectedEOF
	}
	return n, nil
}

// ReadU8 consumes and returns one byte, filling as needed.
func (r *Reader) ReadU8() (byte, error) {
	for len(r.buf) < 1 {
		if _, err := r.FillBuf(); err != nil {
			return 0, err
		}
	}
	b := r.buf[0]
	r.buf = r.buf[1:]
	return b, nil
}

// ReadU16LE consumes 2 little-endian bytes.
func (r *Reader) ReadU16LE() (uint16, error) {
	b, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32LE consumes 4 little-endian bytes.
func (r *Reader) ReadU32LE() (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadU64LE consumes 8 little-endian bytes.
func (r *Reader) ReadU64LE() (uint64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadBytes returns an owned slice of exactly n bytes, consumed from the
// front of the buffer, filling as needed. n == 0 returns an empty, non-nil
// slice without touching the source.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	for len(r.buf) < n {
		if _, err := r.FillBuf(); err != nil {
			return nil, err
		}
	}
	out := make([]byte, n)
	copy(out, r.buf[:n])
	r.buf = r.buf[n:]
	return out, nil
}

// ReadUntil returns all bytes up to and including the first occurrence of
// delim, filling as needed when no occurrence is found in the buffer yet.
func (r *Reader) ReadUntil(delim []byte) ([]byte, error) {
	for {
		if idx := bytes.Index(r.buf, delim); idx >= 0 {
			end := idx + len(delim)
			out := make([]byte, end)
			copy(out, r.buf[:end])
			r.buf = r.buf[end:]
			return out, nil
		}
		if _, err := r.FillBuf(); err != nil {
			return nil, err
		}
	}
}
