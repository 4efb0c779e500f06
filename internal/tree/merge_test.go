package tree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMergeIdentity(t *testing.T) {
	cases := []struct {
		name string
		x    *Node
	}{
		{"scalar", Scalar(1)},
		{"flat mapping", Mapping(Pair{"a", Scalar(1)}, Pair{"b", Scalar("x")})},
		{"nested mapping", Mapping(Pair{"a", Mapping(Pair{"b", Scalar(true)})})},
		{"mapping with bare", MappingWithBare(Scalar("fm"), Pair{"k", Scalar(2)})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Merge(tc.x, Mapping()); !got.Equal(tc.x) {
				t.Errorf("merge(x, {}) = %s, want %s", got, tc.x)
			}
			if got := Merge(Mapping(), tc.x); !got.Equal(tc.x) {
				t.Errorf("merge({}, x) = %s, want %s", got, tc.x)
			}
		})
	}
}

func TestMergeScalarRightBias(t *testing.T) {
	got := Merge(
		Mapping(Pair{"a", Scalar(1)}),
		Mapping(Pair{"a", Scalar(2)}),
	)
	want := Mapping(Pair{"a", Scalar(2)})
	if !got.Equal(want) {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestMergeRecursion(t *testing.T) {
	got := Merge(
		Mapping(Pair{"a", Mapping(Pair{"b", Scalar(1)}, Pair{"c", Scalar(2)})}),
		Mapping(Pair{"a", Mapping(Pair{"b", Scalar(9)})}),
	)
	want := Mapping(Pair{"a", Mapping(Pair{"b", Scalar(9)}, Pair{"c", Scalar(2)})})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("merged tree mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeDottedPathEquivalence(t *testing.T) {
	dotted := Merge(Mapping(Pair{"a.b", Scalar(1)}), Mapping())
	nested := Merge(Mapping(Pair{"a", Mapping(Pair{"b", Scalar(1)})}), Mapping())
	if !dotted.Equal(nested) {
		t.Errorf("dotted form %s != nested form %s", dotted, nested)
	}

	// A dotted key and its nested form must collide, not coexist.
	got := Merge(
		Mapping(Pair{"a.b", Scalar(1)}),
		Mapping(Pair{"a", Mapping(Pair{"b", Scalar(2)})}),
	)
	want := Mapping(Pair{"a", Mapping(Pair{"b", Scalar(2)})})
	if !got.Equal(want) {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestMergeKeyOrder(t *testing.T) {
	got := Merge(
		Mapping(Pair{"b", Scalar(1)}, Pair{"a", Scalar(2)}),
		Mapping(Pair{"z", Scalar(3)}, Pair{"a", Scalar(9)}, Pair{"c", Scalar(4)}),
	)
	wantKeys := []string{"b", "a", "z", "c"}
	if diff := cmp.Diff(wantKeys, got.Keys()); diff != "" {
		t.Errorf("key order mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeSequenceReplacement(t *testing.T) {
	got := Merge(
		Mapping(Pair{"s", Sequence(Scalar(1), Scalar(2), Scalar(3))}),
		Mapping(Pair{"s", Sequence(Scalar(9))}),
	)
	want := Mapping(Pair{"s", Sequence(Scalar(9))})
	if !got.Equal(want) {
		t.Errorf("sequence not replaced wholesale: got %s, want %s", got, want)
	}
}

func TestMergeBareValue(t *testing.T) {
	base := Mapping(Pair{"g", MappingWithBare(Scalar("flowmatch"), Pair{"lr", Scalar(0.1)})})
	override := Mapping(Pair{"g", Mapping(Pair{"lr", Scalar(0.2)})})

	got := Merge(base, override)
	g, _ := got.Child("g")
	if g.Bare() == nil || FormatScalar(g.Bare().Value()) != "flowmatch" {
		t.Fatalf("bare value lost in merge: %s", got)
	}
	lr, _ := g.Child("lr")
	if FormatScalar(lr.Value()) != "0.2" {
		t.Errorf("lr = %s, want 0.2", lr)
	}

	// An override bare value replaces the base one.
	got = Merge(base, Mapping(Pair{"g", MappingWithBare(Scalar("tb"))}))
	g, _ = got.Child("g")
	if FormatScalar(g.Bare().Value()) != "tb" {
		t.Errorf("override bare value did not win: %s", got)
	}
}

func TestMergeOverrideReplacesMismatchedKinds(t *testing.T) {
	// scalar over mapping and mapping over scalar both take the override.
	got := Merge(
		Mapping(Pair{"a", Mapping(Pair{"b", Scalar(1)})}),
		Mapping(Pair{"a", Scalar(7)}),
	)
	if !got.Equal(Mapping(Pair{"a", Scalar(7)})) {
		t.Errorf("scalar override did not replace mapping: %s", got)
	}

	got = Merge(
		Mapping(Pair{"a", Scalar(7)}),
		Mapping(Pair{"a", Mapping(Pair{"b", Scalar(1)})}),
	)
	if !got.Equal(Mapping(Pair{"a", Mapping(Pair{"b", Scalar(1)})})) {
		t.Errorf("mapping override did not replace scalar: %s", got)
	}
}

func TestMergeEmptyMarkerOverrideWins(t *testing.T) {
	got := Merge(
		Mapping(Pair{"a", Scalar(1)}),
		Mapping(Pair{"a", Empty()}),
	)
	a, _ := got.Child("a")
	if a.Kind() != KindEmpty {
		t.Errorf("empty marker override should win, got %s", a)
	}
}
