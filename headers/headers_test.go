package headers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnext-lang/cnextc/symtab"
)

func TestIsCppSniff(t *testing.T) {
	assert.False(t, IsCpp("typedef struct { int x; } Foo;"))
	assert.True(t, IsCpp("class Widget { public: int x; };"))
	assert.True(t, IsCpp("namespace ns { int f(); }"))
	assert.True(t, IsCpp("enum Color : uint8_t { Red, Green };"))
}

func TestCollectStructFields(t *testing.T) {
	src := `
typedef struct {
    uint32_t id;
    char name[16];
} Widget;
`
	r := Collect("widget.h", src, symtab.LangC, nil)
	require.Contains(t, r.StructFields, "Widget")
	fields := r.StructFields["Widget"]
	assert.Equal(t, "uint32_t", fields["id"].Type)
	assert.Equal(t, []int{16}, fields["name"].ArrayDims)
}

func TestCollectEnumBitWidth(t *testing.T) {
	src := `enum Status : uint16_t { Ok, Err };`
	r := Collect("status.h", src, symtab.LangC, nil)
	assert.Equal(t, 16, r.EnumBitWidth["Status"])
}

func TestCollectEnumMemberValues(t *testing.T) {
	src := `enum Status { Ok = 0, Err = 5, Timeout };`
	r := Collect("status.h", src, symtab.LangC, nil)
	require.Contains(t, r.EnumMembers, "Status")
	assert.Equal(t, int64(0), r.EnumMembers["Status"]["Ok"])
	assert.Equal(t, int64(5), r.EnumMembers["Status"]["Err"])
	assert.Equal(t, int64(6), r.EnumMembers["Status"]["Timeout"])
}

func TestCollectFunctionSignature(t *testing.T) {
	src := `int widget_init(int id, char *name);`
	r := Collect("widget.h", src, symtab.LangC, nil)
	var found bool
	for _, s := range r.Symbols {
		if s.Name == "widget_init" {
			found = true
			require.Len(t, s.Params, 2)
			assert.Equal(t, "id", s.Params[0].Name)
		}
	}
	assert.True(t, found)
}
