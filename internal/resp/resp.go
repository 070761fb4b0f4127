/*
author: akashmaji
email: akashmaji@iisc.ac.in
file: respkv/internal/resp/resp.go
*/

// Package resp implements the wire codec: decoding and encoding the three
// RESP value kinds this server speaks (simple string, bulk string, array)
// over the buffered reader in internal/respio.
package resp

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/akashmaji946/respkv/internal/respio"
)

// ErrInvalidData is the sentinel wrapped by every malformed-wire-data
// error this package returns: unknown type byte, non-numeric length,
// missing trailing CRLF.
var ErrInvalidData = errors.New("resp: invalid data")

// Kind distinguishes the two shapes ReadValue can hand back. Array values
// are not materialized — the caller is expected to keep reading Len more
// values off the same stream, exactly as many values as the header named.
type Kind int

const (
	KindString Kind = iota
	KindArray
)

// Value is the decoder's streaming result. Only one of Str/Len is
// meaningful, selected by Kind.
type Value struct {
	Kind Kind
	Str  []byte
	Len  int
}

// ReadValue consumes one byte to dispatch on the RESP type tag, then
// decodes exactly that one value. For an array, only the header is
// decoded; elements are left on the stream for the caller to read.
func ReadValue(r *respio.Reader) (Value, error) {
	tag, err := r.ReadU8()
	if err != nil {
		return Value{}, err
	}
	switch tag {
	case '+':
		line, err := readLine(r)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindString, Str: line}, nil
	case '$':
		return readBulkString(r)
	case '*':
		n, err := readSignedIntLine(r)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindArray, Len: n}, nil
	default:
		return Value{}, fmt.Errorf("%w: unknown value type byte %q", ErrInvalidData, tag)
	}
}

func readBulkString(r *respio.Reader) (Value, error) {
	n, err := readSignedIntLine(r)
	if err != nil {
		return Value{}, err
	}
	if n < 0 {
		return Value{}, fmt.Errorf("%w: negative bulk string length", ErrInvalidData)
	}
	data, err := r.ReadBytes(n)
	if err != nil {
		return Value{}, err
	}
	trailer, err := r.ReadBytes(2)
	if err != nil {
		return Value{}, err
	}
	if !bytes.Equal(trailer, crlf) {
		return Value{}, fmt.Errorf("%w: missing CRLF after bulk string", ErrInvalidData)
	}
	return Value{Kind: KindString, Str: data}, nil
}

// ReadString reads one value and requires it be a string.
func ReadString(r *respio.Reader) ([]byte, error) {
	v, err := ReadValue(r)
	if err != nil {
		return nil, err
	}
	if v.Kind != KindString {
		return nil, fmt.Errorf("%w: expected string value", ErrInvalidData)
	}
	return v.Str, nil
}

// ReadArray reads one value and requires it be an array, returning its
// declared length. The caller must then read exactly that many further
// values off the same reader.
func ReadArray(r *respio.Reader) (int, error) {
	v, err := ReadValue(r)
	if err != nil {
		return 0, err
	}
	if v.Kind != KindArray {
		return 0, fmt.Errorf("%w: expected array value", ErrInvalidData)
	}
	return v.Len, nil
}

// ReadStringArray reads an array header followed by exactly that many
// bulk/simple strings. A negative header length is rejected.
func ReadStringArray(r *respio.Reader) ([][]byte, error) {
	n, err := ReadArray(r)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative array length", ErrInvalidData)
	}
	out := make([][]byte, n)
	for i := range out {
		s, err := ReadString(r)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

var crlf = []byte("\r\n")

// readLine returns the bytes of a CRLF-terminated line, CRLF stripped.
func readLine(r *respio.Reader) ([]byte, error) {
	line, err := r.ReadUntil(crlf)
	if err != nil {
		return nil, err
	}
	return line[:len(line)-len(crlf)], nil
}

func readSignedIntLine(r *respio.Reader) (int, error) {
	line, err := readLine(r)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(string(line))
	if err != nil {
		return 0, fmt.Errorf("%w: malformed integer %q", ErrInvalidData, line)
	}
	return n, nil
}

// writeAll loops on Write until every byte is accepted, the write-all
// discipline every encoder operation below relies on.
func writeAll(w io.Writer, data []byte) error {
	for len(data) > 0 {
		n, err := w.Write(data)
		if err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// WriteSimpleString writes a `+<data>\r\n` frame. The caller guarantees
// data contains no CR or LF.
func WriteSimpleString(w io.Writer, data []byte) error {
	if err := writeAll(w, []byte{'+'}); err != nil {
		return err
	}
	if err := writeAll(w, data); err != nil {
		return err
	}
	return writeAll(w, crlf)
}

// WriteBulkString writes a `$<len>\r\n<data>\r\n` frame.
func WriteBulkString(w io.Writer, data []byte) error {
	if err := writeAll(w, []byte{'$'}); err != nil {
		return err
	}
	if err := writeAll(w, []byte(strconv.Itoa(len(data)))); err != nil {
		return err
	}
	if err := writeAll(w, crlf); err != nil {
		return err
	}
	if err := writeAll(w, data); err != nil {
		return err
	}
	return writeAll(w, crlf)
}

// WriteNullBulkString writes the null-bulk sentinel `$-1\r\n`.
func WriteNullBulkString(w io.Writer) error {
	return writeAll(w, []byte("$-1\r\n"))
}

// WriteBulkStringOpt writes a bulk string when ok is true, or the
// null-bulk sentinel when it is false.
func WriteBulkStringOpt(w io.Writer, data []byte, ok bool) error {
	if !ok {
		return WriteNullBulkString(w)
	}
	return WriteBulkString(w, data)
}

// WriteArray writes a `*<n>\r\n` header. The caller is responsible for
// writing exactly n following values.
func WriteArray(w io.Writer, n int) error {
	if err := writeAll(w, []byte{'*'}); err != nil {
		return err
	}
	if err := writeAll(w, []byte(strconv.Itoa(n))); err != nil {
		return err
	}
	return writeAll(w, crlf)
}
