package lang

import (
	"slices"
	"testing"
)

func TestScope(t *testing.T) {
	global := NewScope(nil)
	global.Set("x", Int(1))
	global.Set("y", Int(10))

	child := NewScope(global)

	if got := child.Get("x"); got != Int(1) {
		t.Errorf("inherited x = %v", got)
	}

	child.Set("x", Int(2))

	if got := child.Get("x"); got != Int(2) {
		t.Errorf("shadowed x = %v", got)
	}

	if got := global.Get("x"); got != Int(1) {
		t.Errorf("Set wrote to the parent: x = %v", got)
	}

	if got := child.Get("missing"); got != Null {
		t.Errorf("miss = %v, want null", got)
	}

	if _, ok := child.Local("y"); ok {
		t.Error("Local found a parent binding")
	}

	if child.Parent() != global || child.Root() != global || child.Depth() != 1 {
		t.Error("parent chain is wrong")
	}

	if got := child.Visible(); !slices.Equal(got, []string{"x", "y"}) {
		t.Errorf("Visible = %v", got)
	}

	child.Delete("x")

	if got := child.Get("x"); got != Int(1) {
		t.Errorf("after Delete x = %v", got)
	}
}
