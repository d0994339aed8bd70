package trace

import "testing"

func TestNew(t *testing.T) {
	tr := New(Span{Start: 4, End: 10}, Raw(KindTake))
	if len(tr) != 1 {
		t.Fatalf("New() produced %d entries, want 1", len(tr))
	}
	if tr[0].Span.Start != 4 {
		t.Errorf("entry start = %d, want 4", tr[0].Span.Start)
	}
	if tr[0].Ann != Raw(KindTake) {
		t.Errorf("entry annotation = %v, want Raw(KindTake)", tr[0].Ann)
	}
}

func TestAppendPreservesOrder(t *testing.T) {
	tr := New(Span{Start: 8, End: 16}, Raw(KindTag))
	tr = tr.Append(Span{Start: 4, End: 16}, Context("inner"))
	tr = tr.Append(Span{Start: 0, End: 16}, Context("outer"))

	if len(tr) != 3 {
		t.Fatalf("trace has %d entries, want 3", len(tr))
	}
	want := []Annotation{Raw(KindTag), Context("inner"), Context("outer")}
	for i, ann := range want {
		if tr[i].Ann != ann {
			t.Errorf("entry %d annotation = %v, want %v", i, tr[i].Ann, ann)
		}
	}
}

func TestAppendStepwiseEqualsBatch(t *testing.T) {
	entries := []Entry{
		{Span{16, 32}, Raw(KindUint)},
		{Span{8, 32}, Context("e2")},
		{Span{0, 32}, Context("e3")},
	}

	stepwise := New(entries[0].Span, entries[0].Ann)
	for _, e := range entries[1:] {
		stepwise = stepwise.Append(e.Span, e.Ann)
	}

	batch := Trace(entries)
	if !stepwise.Equal(batch) {
		t.Errorf("stepwise accumulation %v != batch %v", stepwise, batch)
	}
}

func TestAppendDoesNotMutateReceiver(t *testing.T) {
	base := New(Span{0, 8}, Raw(KindTake))
	left := base.Append(Span{0, 8}, Context("left"))
	right := base.Append(Span{0, 8}, Context("right"))

	if len(base) != 1 {
		t.Fatalf("base grew to %d entries", len(base))
	}
	if left[1].Ann != Context("left") {
		t.Errorf("left branch entry = %v, want Context(left)", left[1].Ann)
	}
	if right[1].Ann != Context("right") {
		t.Errorf("right branch entry = %v, want Context(right)", right[1].Ann)
	}
}

func TestEqual(t *testing.T) {
	a := New(Span{0, 4}, Context("x"))
	b := New(Span{0, 4}, Context("x"))
	if !a.Equal(b) {
		t.Error("identical traces compare unequal")
	}
	if a.Equal(b.Append(Span{0, 4}, Context("y"))) {
		t.Error("traces of different length compare equal")
	}
	if a.Equal(New(Span{1, 4}, Context("x"))) {
		t.Error("traces with different spans compare equal")
	}
	if a.Equal(New(Span{0, 4}, Raw(KindTag))) {
		t.Error("traces with different annotations compare equal")
	}
}

func TestClone(t *testing.T) {
	orig := New(Span{0, 4}, Context("x")).Append(Span{0, 4}, Context("y"))
	clone := orig.Clone()
	if !clone.Equal(orig) {
		t.Fatalf("clone %v != original %v", clone, orig)
	}
	clone[0] = Entry{Span{9, 9}, Context("z")}
	if orig[0].Ann != Context("x") {
		t.Error("mutating the clone changed the original")
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindTake: "Take",
		KindTag:  "Tag",
		KindByte: "Byte",
		KindUint: "Uint",
		KindAlt:  "Alt",
		KindEof:  "Eof",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
