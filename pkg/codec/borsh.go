package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
)

// ErrTruncated is returned when a Reader runs out of bytes mid-field.
var ErrTruncated = errors.New("codec: truncated borsh-equivalent input")

// Writer builds a borsh-equivalent binary payload: little-endian fixed
// width integers, u32-LE length-prefixed variable sequences, and
// single-byte enum discriminators (§4.5).
type Writer struct {
	buf bytes.Buffer
}

func NewWriter() *Writer { return &Writer{} }

func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

func (w *Writer) U8(v uint8) *Writer {
	w.buf.WriteByte(v)
	return w
}

func (w *Writer) U16(v uint16) *Writer {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
	return w
}

func (w *Writer) U32(v uint32) *Writer {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
	return w
}

func (w *Writer) U64(v uint64) *Writer {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
	return w
}

// U128 writes v as 16 little-endian bytes, matching the wire width of the
// spec's u128 amount/fee fields.
func (w *Writer) U128(v *big.Int) *Writer {
	var b [16]byte
	if v != nil {
		v.FillBytes(b[:]) // big-endian, 16 bytes
		reverse(b[:])
	}
	w.buf.Write(b[:])
	return w
}

func (w *Writer) Bool(v bool) *Writer {
	if v {
		return w.U8(1)
	}
	return w.U8(0)
}

// String writes a u32-LE length prefix followed by the raw UTF-8 bytes.
func (w *Writer) String(s string) *Writer {
	w.U32(uint32(len(s)))
	w.buf.WriteString(s)
	return w
}

// Bytes writes a u32-LE length prefix followed by the raw bytes.
func (w *Writer) RawBytes(b []byte) *Writer {
	w.U32(uint32(len(b)))
	w.buf.Write(b)
	return w
}

// FixedBytes writes b verbatim, with no length prefix — for fixed-width
// fields like addresses and hashes.
func (w *Writer) FixedBytes(b []byte) *Writer {
	w.buf.Write(b)
	return w
}

// Discriminant writes a single-byte enum tag ahead of a variant's payload.
func (w *Writer) Discriminant(tag uint8) *Writer {
	return w.U8(tag)
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// Reader consumes a borsh-equivalent binary payload produced by Writer.
type Reader struct {
	buf []byte
	pos int
}

func NewReader(b []byte) *Reader { return &Reader{buf: b} }

func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) take(n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, n, r.Remaining())
	}
	out := r.buf[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

func (r *Reader) U8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) U16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Reader) U32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) U64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *Reader) U128() (*big.Int, error) {
	b, err := r.take(16)
	if err != nil {
		return nil, err
	}
	be := make([]byte, 16)
	copy(be, b)
	reverse(be)
	return new(big.Int).SetBytes(be), nil
}

func (r *Reader) Bool() (bool, error) {
	v, err := r.U8()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

func (r *Reader) String() (string, error) {
	n, err := r.U32()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *Reader) RawBytes() ([]byte, error) {
	n, err := r.U32()
	if err != nil {
		return nil, err
	}
	return r.take(int(n))
}

func (r *Reader) FixedBytes(n int) ([]byte, error) {
	return r.take(n)
}

func (r *Reader) Discriminant() (uint8, error) {
	return r.U8()
}
