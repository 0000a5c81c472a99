package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// MaxUsernameLen is the maximum username length in bytes on the wire.
const MaxUsernameLen = 16

// Codec failure classes. io.EOF is returned verbatim only when the stream
// ends exactly on a packet boundary — the caller converts that into a clean
// shutdown. Everything else is fatal to the connection.
var (
	ErrShortRead      = errors.New("protocol: stream ended mid-packet")
	ErrInvalidUTF8    = errors.New("protocol: string is not valid UTF-8")
	ErrLengthExceeded = errors.New("protocol: string length exceeds limit")
	ErrUnknownVariant = errors.New("protocol: unknown packet variant")
	ErrInvalidBoolean = errors.New("protocol: invalid boolean byte")
)

const maxVarIntBytes = 5

// Reader decodes protocol primitives from a byte stream.
//
// The packet boundary is tracked so that EOF before the first byte of a
// discriminator surfaces as io.EOF, while EOF anywhere inside a packet
// surfaces as ErrShortRead.
type Reader struct {
	r       io.Reader
	buf     [8]byte
	started bool // true once any byte of the current packet has been consumed
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// beginPacket resets the packet-boundary marker and reads the variant key.
func (r *Reader) beginPacket() (int32, error) {
	r.started = false
	return r.ReadVarInt()
}

func (r *Reader) readFull(p []byte) error {
	if _, err := io.ReadFull(r.r, p); err != nil {
		if errors.Is(err, io.EOF) {
			if !r.started {
				return io.EOF
			}
			return ErrShortRead
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrShortRead
		}
		return err
	}
	r.started = true
	return nil
}

// ReadVarInt reads a signed 32-bit integer encoded as little-endian 7-bit
// groups with a continuation bit (1-5 bytes).
func (r *Reader) ReadVarInt() (int32, error) {
	var result uint32
	for i := 0; i < maxVarIntBytes; i++ {
		if err := r.readFull(r.buf[:1]); err != nil {
			return 0, err
		}
		b := r.buf[0]
		result |= uint32(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return int32(result), nil
		}
	}
	return 0, fmt.Errorf("protocol: varint exceeds %d bytes", maxVarIntBytes)
}

// ReadString reads a VarInt length prefix followed by UTF-8 content.
// Fails with ErrLengthExceeded if the prefix exceeds max bytes, and with
// ErrInvalidUTF8 if the content is not valid UTF-8.
func (r *Reader) ReadString(max int) (string, error) {
	n, err := r.ReadVarInt()
	if err != nil {
		return "", err
	}
	if n < 0 || int(n) > max {
		return "", fmt.Errorf("%w: %d > %d", ErrLengthExceeded, n, max)
	}
	if n == 0 {
		return "", nil
	}
	b := make([]byte, n)
	if err := r.readFull(b); err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}

// ReadBool reads a single byte that must be 0 or 1.
func (r *Reader) ReadBool() (bool, error) {
	if err := r.readFull(r.buf[:1]); err != nil {
		return false, err
	}
	switch r.buf[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: 0x%02X", ErrInvalidBoolean, r.buf[0])
	}
}

// ReadUint8 reads a single unsigned byte.
func (r *Reader) ReadUint8() (uint8, error) {
	if err := r.readFull(r.buf[:1]); err != nil {
		return 0, err
	}
	return r.buf[0], nil
}

// ReadInt32 reads a fixed-width little-endian signed 32-bit integer.
func (r *Reader) ReadInt32() (int32, error) {
	if err := r.readFull(r.buf[:4]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(r.buf[:4])), nil
}

// Writer encodes protocol primitives to a byte stream.
type Writer struct {
	w   io.Writer
	buf [8]byte
}

// NewWriter creates a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteVarInt writes a signed 32-bit integer as little-endian 7-bit groups
// with a continuation bit.
func (w *Writer) WriteVarInt(v int32) error {
	u := uint32(v)
	n := 0
	for {
		b := byte(u & 0x7F)
		u >>= 7
		if u != 0 {
			b |= 0x80
		}
		w.buf[n] = b
		n++
		if u == 0 {
			break
		}
	}
	if _, err := w.w.Write(w.buf[:n]); err != nil {
		return fmt.Errorf("writing varint: %w", err)
	}
	return nil
}

// WriteString writes a VarInt length prefix followed by the UTF-8 bytes of s.
// Fails with ErrLengthExceeded if s is longer than max bytes.
func (w *Writer) WriteString(s string, max int) error {
	if len(s) > max {
		return fmt.Errorf("%w: %d > %d", ErrLengthExceeded, len(s), max)
	}
	if err := w.WriteVarInt(int32(len(s))); err != nil {
		return err
	}
	if _, err := io.WriteString(w.w, s); err != nil {
		return fmt.Errorf("writing string: %w", err)
	}
	return nil
}

// WriteBool writes a boolean as a single 0/1 byte.
func (w *Writer) WriteBool(v bool) error {
	w.buf[0] = 0
	if v {
		w.buf[0] = 1
	}
	if _, err := w.w.Write(w.buf[:1]); err != nil {
		return fmt.Errorf("writing bool: %w", err)
	}
	return nil
}

// WriteUint8 writes a single unsigned byte.
func (w *Writer) WriteUint8(v uint8) error {
	w.buf[0] = v
	if _, err := w.w.Write(w.buf[:1]); err != nil {
		return fmt.Errorf("writing uint8: %w", err)
	}
	return nil
}

// WriteInt32 writes a fixed-width little-endian signed 32-bit integer.
func (w *Writer) WriteInt32(v int32) error {
	binary.LittleEndian.PutUint32(w.buf[:4], uint32(v))
	if _, err := w.w.Write(w.buf[:4]); err != nil {
		return fmt.Errorf("writing int32: %w", err)
	}
	return nil
}
