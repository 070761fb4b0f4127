/*
author: akashmaji
email: akashmaji@iisc.ac.in
file: respkv/internal/rdb/rdb.go
*/

// Package rdb decodes the RDB snapshot format into a slice of
// store.Dataset, the on-disk counterpart of the in-memory layout in
// internal/store. Only the opcode subset this server needs is recognized:
// string values, auxiliary/resizedb hints (discarded), millisecond and
// second expiry, db-select, and EOF.
package rdb

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/akashmaji946/respkv/internal/respio"
	"github.com/akashmaji946/respkv/internal/store"
)

// ErrInvalidData is the sentinel wrapped by every malformed-snapshot
// error: bad magic, bad version, unknown opcode, invalid length code.
var ErrInvalidData = errors.New("rdb: invalid data")

var (
	magicBytes   = []byte("REDIS")
	versionBytes = []byte("0003")
)

const (
	opString   = 0x00
	opAux      = 0xFA
	opResizeDB = 0xFB
	opExpireMS = 0xFC
	opExpireS  = 0xFD
	opSelectDB = 0xFE
	opEOF      = 0xFF
)

// lengthKind distinguishes the two things a length prefix can mean: an
// ordinary count, or a special encoding selector (used only for strings
// that are really small integers).
type lengthKind int

const (
	lengthNormal lengthKind = iota
	lengthSpecial
)

type length struct {
	kind    lengthKind
	normal  uint32
	special byte
}

// readLength decodes the 1-5 byte variable-width length prefix: the top
// two bits of the first byte select among four encodings.
func readLength(r *respio.Reader) (length, error) {
	first, err := r.ReadU8()
	if err != nil {
		return length{}, err
	}
	switch first & 0xC0 {
	case 0x00:
		return length{kind: lengthNormal, normal: uint32(first)}, nil
	case 0x40:
		second, err := r.ReadU8()
		if err != nil {
			return length{}, err
		}
		return length{kind: lengthNormal, normal: uint32(first&0x3F)<<8 | uint32(second)}, nil
	case 0x80:
		// Read via the same little-endian primitive used elsewhere in
		// this decoder, for consistency with every other multi-byte
		// field this format encodes.
		v, err := r.ReadU32LE()
		if err != nil {
			return length{}, err
		}
		return length{kind: lengthNormal, normal: v}, nil
	default: // 0xC0
		return length{kind: lengthSpecial, special: first & 0x3F}, nil
	}
}

// readString decodes one RDB string: either a length-prefixed byte run,
// or (for Special(0|1|2)) a 1/2/4-byte integer whose raw little-endian
// bytes are returned as-is.
func readString(r *respio.Reader) ([]byte, error) {
	l, err := readLength(r)
	if err != nil {
		return nil, err
	}
	if l.kind == lengthNormal {
		return r.ReadBytes(int(l.normal))
	}
	switch l.special {
	case 0:
		return r.ReadBytes(1)
	case 1:
		return r.ReadBytes(2)
	case 2:
		return r.ReadBytes(4)
	default:
		return nil, fmt.Errorf("%w: invalid string length mode %d", ErrInvalidData, l.special)
	}
}

// LoadFile opens path and decodes it as an RDB snapshot. A missing file
// is reported via the returned error wrapping os.ErrNotExist; callers that
// treat a missing snapshot as "start empty" should check for that with
// os.IsNotExist.
func LoadFile(path string) ([]*store.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(respio.NewFileReader(f))
}

// Decode reads the RDB header and opcode stream from r, returning the
// datasets it describes. Only db index 0 is reachable (0xFE requires
// Normal(0)); the decoder starts with one empty dataset and never
// allocates another.
func Decode(r *respio.Reader) ([]*store.Dataset, error) {
	magic, err := r.ReadBytes(5)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(magic, magicBytes) {
		return nil, fmt.Errorf("%w: bad magic %q, expected REDIS", ErrInvalidData, magic)
	}

	version, err := r.ReadBytes(4)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(version, versionBytes) {
		return nil, fmt.Errorf("%w: unsupported version %q, expected 0003", ErrInvalidData, version)
	}

	datasets := []*store.Dataset{store.NewDataset()}
	const currentDB = 0

	for {
		opcode, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		switch opcode {
		case opString:
			key, value, err := readKeyValue(r)
			if err != nil {
				return nil, err
			}
			datasets[currentDB].Set(key, store.NewStringValue(value))

		case opAux:
			if _, err := readString(r); err != nil {
				return nil, err
			}
			if _, err := readString(r); err != nil {
				return nil, err
			}

		case opResizeDB:
			if _, err := readLength(r); err != nil {
				return nil, err
			}
			if _, err := readLength(r); err != nil {
				return nil, err
			}

		case opExpireMS:
			ms, err := r.ReadU64LE()
			if err != nil {
				return nil, err
			}
			if err := expectStringValueType(r); err != nil {
				return nil, err
			}
			key, value, err := readKeyValue(r)
			if err != nil {
				return nil, err
			}
			datasets[currentDB].SetExpiry(key, time.UnixMilli(int64(ms)))
			datasets[currentDB].Set(key, store.NewStringValue(value))

		case opExpireS:
			secs, err := r.ReadU32LE()
			if err != nil {
				return nil, err
			}
			if err := expectStringValueType(r); err != nil {
				return nil, err
			}
			key, value, err := readKeyValue(r)
			if err != nil {
				return nil, err
			}
			datasets[currentDB].SetExpiry(key, time.Unix(int64(secs), 0))
			datasets[currentDB].Set(key, store.NewStringValue(value))

		case opSelectDB:
			db, err := readLength(r)
			if err != nil {
				return nil, err
			}
			if db.kind != lengthNormal || db.normal != 0 {
				return nil, fmt.Errorf("%w: only db 0 is supported, got %+v", ErrInvalidData, db)
			}

		case opEOF:
			return datasets, nil

		default:
			return nil, fmt.Errorf("%w: unknown opcode 0x%02X", ErrInvalidData, opcode)
		}
	}
}

func readKeyValue(r *respio.Reader) (key, value []byte, err error) {
	key, err = readString(r)
	if err != nil {
		return nil, nil, err
	}
	value, err = readString(r)
	if err != nil {
		return nil, nil, err
	}
	return key, value, nil
}

func expectStringValueType(r *respio.Reader) error {
	vt, err := r.ReadU8()
	if err != nil {
		return err
	}
	if vt != opString {
		return fmt.Errorf("%w: only string values are supported, got value type 0x%02X", ErrInvalidData, vt)
	}
	return nil
}
