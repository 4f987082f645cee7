package effect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	assert.Equal(t, Effect{Kind: KindInclude, Header: "stdint.h"}, Include("stdint.h"))
	assert.Equal(t, Effect{Kind: KindISR}, ISR())
	assert.Equal(t, Effect{Kind: KindHelper, Op: "add", Type: "u8"}, Helper("add", "u8"))
	assert.Equal(t, Effect{Kind: KindSafeDiv, Op: "div", Type: "u32"}, SafeDiv("div", "u32"))
	assert.Equal(t, Effect{Kind: KindRegisterLocal, Name: "tmp", IsArray: true}, RegisterLocal("tmp", true))
	assert.Equal(t, Effect{Kind: KindNeedsString}, NeedsString())
}

func TestBagAddAndItemsPreserveOrder(t *testing.T) {
	b := &Bag{}
	b.Add(Include("stdint.h"))
	b.Add(Helper("add", "u8"))

	items := b.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	assert.Equal(t, KindInclude, items[0].Kind)
	assert.Equal(t, KindHelper, items[1].Kind)
}

func TestBagMerge(t *testing.T) {
	a := &Bag{}
	a.Add(Include("stdint.h"))

	b := &Bag{}
	b.Add(Helper("add", "u8"))

	a.Merge(b)
	assert.Len(t, a.Items(), 2)
}

func TestBagMergeNilIsNoop(t *testing.T) {
	a := &Bag{}
	a.Add(Include("stdint.h"))
	a.Merge(nil)
	assert.Len(t, a.Items(), 1)
}
