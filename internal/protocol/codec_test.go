package protocol

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

// TestVarIntRoundTrip verifies encode/decode symmetry over boundary values.
func TestVarIntRoundTrip(t *testing.T) {
	values := []int32{0, 1, 127, 128, 255, 300, 16383, 16384, 2097151, 1<<31 - 1, -1, -128, -1 << 31}

	for _, v := range values {
		var buf bytes.Buffer
		if err := NewWriter(&buf).WriteVarInt(v); err != nil {
			t.Fatalf("WriteVarInt(%d): %v", v, err)
		}
		got, err := NewReader(&buf).ReadVarInt()
		if err != nil {
			t.Fatalf("ReadVarInt(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d: got %d", v, got)
		}
	}
}

// TestVarIntEncodingWidth verifies the 1-5 byte little-endian group layout.
func TestVarIntEncodingWidth(t *testing.T) {
	cases := []struct {
		v    int32
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xAC, 0x02}},
		{-1, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}},
	}

	for _, tc := range cases {
		var buf bytes.Buffer
		if err := NewWriter(&buf).WriteVarInt(tc.v); err != nil {
			t.Fatalf("WriteVarInt(%d): %v", tc.v, err)
		}
		if !bytes.Equal(buf.Bytes(), tc.want) {
			t.Errorf("encoding of %d: got %x, want %x", tc.v, buf.Bytes(), tc.want)
		}
	}
}

func TestStringRejectsOversizedPrefix(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteVarInt(int32(MaxUsernameLen + 1)); err != nil {
		t.Fatal(err)
	}
	buf.WriteString(strings.Repeat("a", MaxUsernameLen+1))

	_, err := NewReader(&buf).ReadString(MaxUsernameLen)
	if !errors.Is(err, ErrLengthExceeded) {
		t.Errorf("got %v, want ErrLengthExceeded", err)
	}
}

func TestStringRejectsInvalidUTF8(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteVarInt(2); err != nil {
		t.Fatal(err)
	}
	buf.Write([]byte{0xFF, 0xFE})

	_, err := NewReader(&buf).ReadString(MaxUsernameLen)
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("got %v, want ErrInvalidUTF8", err)
	}
}

func TestWriteStringRejectsTooLong(t *testing.T) {
	var buf bytes.Buffer
	err := NewWriter(&buf).WriteString(strings.Repeat("x", MaxUsernameLen+1), MaxUsernameLen)
	if !errors.Is(err, ErrLengthExceeded) {
		t.Errorf("got %v, want ErrLengthExceeded", err)
	}
}

func TestBoolRejectsInvalidByte(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x02}))
	if _, err := r.ReadBool(); !errors.Is(err, ErrInvalidBoolean) {
		t.Errorf("got %v, want ErrInvalidBoolean", err)
	}
}

// TestEOFAtPacketBoundary verifies that a stream ending exactly between
// packets reports io.EOF, which callers treat as a clean shutdown.
func TestEOFAtPacketBoundary(t *testing.T) {
	_, err := DecodeServerboundLogin(NewReader(bytes.NewReader(nil)))
	if !errors.Is(err, io.EOF) {
		t.Errorf("got %v, want io.EOF", err)
	}
}

// TestShortReadMidPacket verifies that a stream ending inside a packet is a
// fault, not a clean EOF.
func TestShortReadMidPacket(t *testing.T) {
	// RequestUsername key, then a truncated string.
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteVarInt(KeyLoginRequestUsername); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteVarInt(5); err != nil { // promises 5 bytes
		t.Fatal(err)
	}
	buf.WriteString("ab") // delivers 2

	_, err := DecodeServerboundLogin(NewReader(&buf))
	if !errors.Is(err, ErrShortRead) {
		t.Errorf("got %v, want ErrShortRead", err)
	}
}

func TestInt32LittleEndian(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf).WriteInt32(0x01020304); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x04, 0x03, 0x02, 0x01}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got %x, want %x", buf.Bytes(), want)
	}

	v, err := NewReader(&buf).ReadInt32()
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x01020304 {
		t.Errorf("got 0x%08X", v)
	}
}
