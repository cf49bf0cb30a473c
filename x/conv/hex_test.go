package conv

import (
	"bytes"
	"testing"
)

func TestU32Hex(t *testing.T) {
	var buf [8]byte
	if got := string(U32Hex(buf[:], 0x123, 3)); got != "123" {
		t.Fatalf("U32Hex(0x123, 3) = %q", got)
	}
	if got := string(U32Hex(buf[:], 0x18DAF110, 8)); got != "18DAF110" {
		t.Fatalf("U32Hex(0x18DAF110, 8) = %q", got)
	}
	if got := U32Hex(buf[:2], 1, 8); len(got) != 0 {
		t.Fatalf("undersized buffer should yield empty slice, got %q", got)
	}
}

func TestAppendBytesHex(t *testing.T) {
	got := AppendBytesHex(nil, []byte{0xDE, 0xAD, 0x01})
	if !bytes.Equal(got, []byte("DEAD01")) {
		t.Fatalf("AppendBytesHex = %q", got)
	}
}

func TestParseHexU32(t *testing.T) {
	if v, ok := ParseHexU32([]byte("7FF")); !ok || v != 0x7FF {
		t.Fatalf("ParseHexU32(7FF) = %x, %v", v, ok)
	}
	if v, ok := ParseHexU32([]byte("1fffffff")); !ok || v != 0x1FFFFFFF {
		t.Fatalf("lowercase parse = %x, %v", v, ok)
	}
	if _, ok := ParseHexU32([]byte("")); ok {
		t.Fatal("empty input accepted")
	}
	if _, ok := ParseHexU32([]byte("XYZ")); ok {
		t.Fatal("junk input accepted")
	}
	if _, ok := ParseHexU32([]byte("123456789")); ok {
		t.Fatal("overlong input accepted")
	}
}
