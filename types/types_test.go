package types

import (
	"testing"

	"github.com/cnext-lang/cnextc/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNarrowing(t *testing.T) {
	tests := []struct {
		name     string
		src, dst TypeInfo
		expected bool
	}{
		{"u32 to u8 narrows", TypeInfo{BaseName: "u32", BitWidth: 32}, TypeInfo{BaseName: "u8", BitWidth: 8}, true},
		{"u8 to u32 widens", TypeInfo{BaseName: "u8", BitWidth: 8}, TypeInfo{BaseName: "u32", BitWidth: 32}, false},
		{"same width same sign", TypeInfo{BaseName: "u32", BitWidth: 32}, TypeInfo{BaseName: "u32", BitWidth: 32}, false},
		{"f64 to f32 narrows", TypeInfo{BaseName: "f64", BitWidth: 64}, TypeInfo{BaseName: "f32", BitWidth: 32}, true},
		{"struct to struct never narrows", TypeInfo{BaseName: "Point", IsStruct: true}, TypeInfo{BaseName: "Point", IsStruct: true}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsNarrowing(tc.src, tc.dst))
		})
	}
}

func TestIsSignConversion(t *testing.T) {
	tests := []struct {
		name     string
		src, dst TypeInfo
		expected bool
	}{
		{"u32 to i32 same width", TypeInfo{BaseName: "u32", BitWidth: 32}, TypeInfo{BaseName: "i32", BitWidth: 32}, true},
		{"u32 to u32 no change", TypeInfo{BaseName: "u32", BitWidth: 32}, TypeInfo{BaseName: "u32", BitWidth: 32}, false},
		{"u8 to i32 differing width not flagged here", TypeInfo{BaseName: "u8", BitWidth: 8}, TypeInfo{BaseName: "i32", BitWidth: 32}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsSignConversion(tc.src, tc.dst))
		})
	}
}

func TestValidateTypeConversionReportsNarrowing(t *testing.T) {
	src := TypeInfo{BaseName: "u32", BitWidth: 32}
	dst := TypeInfo{BaseName: "u8", BitWidth: 8}
	d := ValidateTypeConversion(src, dst, diag.Span{File: "t.cnx", Line: 1, Column: 1})
	require.NotNil(t, d)
	assert.Contains(t, d.Message, "narrowing")
}

func TestValidateTypeConversionReportsSignChange(t *testing.T) {
	src := TypeInfo{BaseName: "u32", BitWidth: 32}
	dst := TypeInfo{BaseName: "i32", BitWidth: 32}
	d := ValidateTypeConversion(src, dst, diag.Span{File: "t.cnx", Line: 1, Column: 1})
	require.NotNil(t, d)
	assert.Contains(t, d.Message, "sign")
}

func TestValidateTypeConversionAcceptsWidening(t *testing.T) {
	src := TypeInfo{BaseName: "u8", BitWidth: 8}
	dst := TypeInfo{BaseName: "u32", BitWidth: 32}
	assert.Nil(t, ValidateTypeConversion(src, dst, diag.Span{File: "t.cnx", Line: 1, Column: 1}))
}

func TestGetLiteralType(t *testing.T) {
	tests := []struct {
		text     string
		wantType string
		wantHex  bool
		wantBin  bool
	}{
		{"10u64", "u64", false, false},
		{"1i8", "i8", false, false},
		{"0x1F", "", true, false},
		{"0b101", "", false, true},
		{"1.5f32", "f32", false, false},
		{"true", "bool", false, false},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			lit := GetLiteralType(tc.text)
			assert.Equal(t, tc.wantType, lit.TypeName)
			assert.Equal(t, tc.wantHex, lit.IsHex)
			assert.Equal(t, tc.wantBin, lit.IsBin)
		})
	}
}

func TestIsLiteralZero(t *testing.T) {
	assert.True(t, IsLiteralZero("0"))
	assert.True(t, IsLiteralZero("0x0"))
	assert.True(t, IsLiteralZero("0b0"))
	assert.True(t, IsLiteralZero("0u32"))
	assert.False(t, IsLiteralZero("1"))
	assert.False(t, IsLiteralZero("0x1"))
}

func TestValidateLiteralFitsType(t *testing.T) {
	ok, _ := ValidateLiteralFitsType("255", "u8")
	assert.True(t, ok)

	ok, val := ValidateLiteralFitsType("300", "u8")
	assert.False(t, ok)
	assert.Equal(t, "300", val.String())

	ok, _ = ValidateLiteralFitsType("-1", "i8")
	assert.True(t, ok)

	ok, _ = ValidateLiteralFitsType("-129", "i8")
	assert.False(t, ok)
}

func TestRegistrySnapshotRestore(t *testing.T) {
	reg := NewRegistry()
	reg.Declare("x", TypeInfo{BaseName: "u32"})
	snap := reg.Snapshot()

	reg.Declare("y", TypeInfo{BaseName: "u8"})
	_, ok := reg.Lookup("y")
	require.True(t, ok)

	reg.Restore(snap)
	_, ok = reg.Lookup("y")
	assert.False(t, ok)
	_, ok = reg.Lookup("x")
	assert.True(t, ok)
}
