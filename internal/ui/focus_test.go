package ui

import "testing"

func TestFocusManager_Rotation(t *testing.T) {
	var changes []string
	f := &FocusManager{OnChange: func(from, to string) { changes = append(changes, from+">"+to) }}
	f.SetOrder([]string{"map", "property", "chart"})

	if f.Current != "map" {
		t.Fatalf("SetOrder should focus the first panel, got %q", f.Current)
	}
	if got := f.Next(); got != "property" {
		t.Errorf("Next = %q", got)
	}
	f.Next()
	if got := f.Next(); got != "map" {
		t.Errorf("Next should wrap, got %q", got)
	}
	if got := f.Prev(); got != "chart" {
		t.Errorf("Prev should wrap, got %q", got)
	}
	want := []string{">map", "map>property", "property>chart", "chart>map", "map>chart"}
	if len(changes) != len(want) {
		t.Fatalf("changes = %v, want %v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("changes[%d] = %q, want %q", i, changes[i], want[i])
		}
	}
}

func TestFocusManager_SetOrderKeepsCurrent(t *testing.T) {
	f := &FocusManager{}
	f.SetOrder([]string{"a", "b", "c"})
	f.SetFocus("b")

	f.SetOrder([]string{"c", "b"})
	if f.Current != "b" {
		t.Errorf("focus should stay on b, got %q", f.Current)
	}
	f.SetOrder([]string{"c"})
	if f.Current != "c" {
		t.Errorf("focus should move to the first panel, got %q", f.Current)
	}
	f.SetOrder(nil)
	if f.Current != "" || f.Next() != "" || f.Prev() != "" {
		t.Errorf("empty order should clear focus, got %q", f.Current)
	}
}

func TestFocusManager_SetFocusUnknown(t *testing.T) {
	f := &FocusManager{}
	f.SetOrder([]string{"a"})
	if f.SetFocus("zzz") {
		t.Error("SetFocus should reject unknown ids")
	}
	if f.Current != "a" {
		t.Errorf("Current = %q", f.Current)
	}
}
