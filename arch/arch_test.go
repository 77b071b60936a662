package arch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegmentTable(t *testing.T) {
	want := []string{"ES", "CS", "SS", "DS", "ES", "CS", "SS", "DS"}

	for n, name := range want {
		assert.Equal(t, name, SegName(n), "field %d", n)
		assert.Equal(t, n&3, SegmentIndex(n), "field %d", n)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		opcode, modrm byte
		want          string
	}{
		{0x90, 0x00, "NOP"},
		{0x81, 0x38, "CMP"},
		{0xd1, 0x20, "SHL"},
		{0xf7, 0x30, "DIV"},
		{0x8c, 0xc8, "MOV r/m16, CS"},
		{0x8c, 0xe8, "MOV r/m16, CS"},
		{0x8e, 0xd8, "MOV DS, r/m16"},
		{0x8e, 0xf8, "MOV DS, r/m16"},
		{0x0f, 0x00, "DB 0Fh"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Describe(tt.opcode, tt.modrm), "%02x %02x", tt.opcode, tt.modrm)
	}
}
