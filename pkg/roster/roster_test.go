package roster

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResize_PreservesSurvivorsAndResetsReadded(t *testing.T) {
	r := New(5, func(int) string { return "" })
	for i := 0; i < 5; i++ {
		r.Set(i, string(rune('a'+i)))
	}

	r.Resize(2)
	if diff := cmp.Diff([]string{"a", "b"}, r.Entries()); diff != "" {
		t.Fatalf("after shrink (-want +got):\n%s", diff)
	}

	r.Resize(5)
	if diff := cmp.Diff([]string{"a", "b", "", "", ""}, r.Entries()); diff != "" {
		t.Fatalf("after regrow (-want +got):\n%s", diff)
	}
}

func TestResize_NewItemReceivesIndex(t *testing.T) {
	r := New(3, func(i int) int { return i * 10 })
	r.Resize(4)
	if diff := cmp.Diff([]int{0, 10, 20, 30}, r.Entries()); diff != "" {
		t.Fatalf("entries (-want +got):\n%s", diff)
	}
}

func TestResize_PointerEntriesAreNotReused(t *testing.T) {
	type child struct{ age int }
	r := New(2, func(int) *child { return &child{age: 8} })
	r.Update(1, func(c **child) { (*c).age = 3 })

	r.Resize(1)
	r.Resize(2)
	got, _ := r.At(1)
	if got.age != 8 {
		t.Fatalf("re-added entry kept stale age %d", got.age)
	}
}

func TestBounds(t *testing.T) {
	r := New[string](1, nil)
	if _, ok := r.At(1); ok {
		t.Fatal("At out of range should fail")
	}
	if r.Set(-1, "x") {
		t.Fatal("Set out of range should fail")
	}
	r.Resize(-3)
	if r.Len() != 0 {
		t.Fatalf("negative resize should empty roster, got %d", r.Len())
	}
}
