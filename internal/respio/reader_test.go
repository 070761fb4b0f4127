package respio

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// chunkedReader hands back its data a few bytes at a time, to exercise
// the fill-until-enough loops in the primitive readers.
type chunkedReader struct {
	data      []byte
	chunkSize int
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, io.EOF
	}
	n := c.chunkSize
	if n > len(p) {
		n = len(p)
	}
	if n > len(c.data) {
		n = len(c.data)
	}
	copy(p, c.data[:n])
	c.data = c.data[n:]
	return n, nil
}

func TestReadU8(t *testing.T) {
	r := NewStreamReader(&chunkedReader{data: []byte{0x42}, chunkSize: 1})
	b, err := r.ReadU8()
	require.NoError(t, err)
	require.Equal(t, byte(0x42), b)
}

func TestReadU16LE(t *testing.T) {
	r := NewStreamReader(&chunkedReader{data: []byte{0x01, 0x02}, chunkSize: 1})
	v, err := r.ReadU16LE()
	require.NoError(t, err)
	require.Equal(t, uint16(0x0201), v)
}

func TestReadU32LE(t *testing.T) {
	r := NewStreamReader(&chunkedReader{data: []byte{0x01, 0x00, 0x00, 0x00}, chunkSize: 1})
	v, err := r.ReadU32LE()
	require.NoError(t, err)
	require.Equal(t, uint32(1), v)
}

func TestReadU64LE(t *testing.T) {
	r := NewStreamReader(&chunkedReader{data: []byte{1, 0, 0, 0, 0, 0, 0, 0}, chunkSize: 3})
	v, err := r.ReadU64LE()
	require.NoError(t, err)
	require.Equal(t, uint64(1), v)
}

func TestReadBytesAcrossFills(t *testing.T) {
	want := []byte("hello world")
	r := NewStreamReader(&chunkedReader{data: want, chunkSize: 2})
	got, err := r.ReadBytes(len(want))
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestReadUntilDelimiter(t *testing.T) {
	r := NewStreamReader(&chunkedReader{data: []byte("foo\r\nbar"), chunkSize: 1})
	line, err := r.ReadUntil([]byte("\r\n"))
	require.NoError(t, err)
	require.Equal(t, []byte("foo\r\n"), line)

	rest, err := r.ReadBytes(3)
	require.NoError(t, err)
	require.Equal(t, []byte("bar"), rest)
}

func TestFillBufReportsUnexpectedEOF(t *testing.T) {
	r := NewStreamReader(bytes.NewReader(nil))
	_, err := r.ReadU8()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestFileReaderTracksItsOwnOffset(t *testing.T) {
	data := []byte("0123456789")
	r := NewFileReader(bytes.NewReader(data))

	first, err := r.ReadBytes(4)
	require.NoError(t, err)
	require.Equal(t, []byte("0123"), first)

	second, err := r.ReadBytes(4)
	require.NoError(t, err)
	require.Equal(t, []byte("4567"), second)
}
