package assign

// Kind is one of the ~30 L-value-plus-operator shapes spec.md §4.6
// enumerates. Grouped into eight priority families; Classify tries
// families in the order they're listed there, first match wins.
type Kind int

const (
	// Family 1: bitmap field writes, split by field width.
	KindBitmapFieldWrite1 Kind = iota // width == 1
	KindBitmapFieldWriteN             // width > 1
	KindStructBitmapFieldWrite1
	KindStructBitmapFieldWriteN
	KindRegisterBitmapFieldWrite1
	KindRegisterBitmapFieldWriteN
	KindScopeRegisterBitmapFieldWrite

	// Family 2: member access with subscripts.
	KindNestedArrayWrite        // arr[i][j]
	KindRegisterBitIndexWrite   // REG.MEMBER[bit]
	KindRegisterBitRangeWrite   // REG.MEMBER[start, width]
	KindBitmapArrayElementWrite // bitmap-array element field

	// Family 3: prefixed targets.
	KindGlobalPrefixWrite
	KindThisPrefixWrite
	KindGlobalRegisterBitRangeWrite
	KindThisRegisterBitRangeWrite

	// Family 4: simple array/bit access.
	KindArrayElementWrite // arr[i]
	KindArraySliceWrite   // arr[off, len]
	KindScalarBitWrite    // scalar[i]
	KindScalarBitRangeWrite

	// Family 5: atomic / overflow compound.
	KindAtomicCompound
	KindClampCompound

	// Family 6: string assignment.
	KindStringAssign

	// Family 7: member chain fallback.
	KindMemberChainFallback

	// Family 8: simple identifier.
	KindSimpleIdentifier
)

var kindNames = map[Kind]string{
	KindBitmapFieldWrite1:             "bitmap_field_write_1",
	KindBitmapFieldWriteN:             "bitmap_field_write_n",
	KindStructBitmapFieldWrite1:       "struct_bitmap_field_write_1",
	KindStructBitmapFieldWriteN:       "struct_bitmap_field_write_n",
	KindRegisterBitmapFieldWrite1:     "register_bitmap_field_write_1",
	KindRegisterBitmapFieldWriteN:     "register_bitmap_field_write_n",
	KindScopeRegisterBitmapFieldWrite: "scope_register_bitmap_field_write",
	KindNestedArrayWrite:              "nested_array_write",
	KindRegisterBitIndexWrite:         "register_bit_index_write",
	KindRegisterBitRangeWrite:         "register_bit_range_write",
	KindBitmapArrayElementWrite:       "bitmap_array_element_write",
	KindGlobalPrefixWrite:             "global_prefix_write",
	KindThisPrefixWrite:               "this_prefix_write",
	KindGlobalRegisterBitRangeWrite:   "global_register_bit_range_write",
	KindThisRegisterBitRangeWrite:     "this_register_bit_range_write",
	KindArrayElementWrite:             "array_element_write",
	KindArraySliceWrite:               "array_slice_write",
	KindScalarBitWrite:                "scalar_bit_write",
	KindScalarBitRangeWrite:           "scalar_bit_range_write",
	KindAtomicCompound:                "atomic_compound",
	KindClampCompound:                 "clamp_compound",
	KindStringAssign:                  "string_assign",
	KindMemberChainFallback:           "member_chain_fallback",
	KindSimpleIdentifier:              "simple_identifier",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}
