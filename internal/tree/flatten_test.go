package tree

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFlattenBareValueOrder(t *testing.T) {
	n := Mapping(
		Pair{"gflownet", MappingWithBare(
			Scalar("flowmatch"),
			Pair{"optimizer", Mapping(Pair{"lr", Scalar(0.0001)})},
		)},
	)
	args, err := Args(n)
	if err != nil {
		t.Fatalf("Args: %v", err)
	}
	want := []string{"gflownet=flowmatch", "gflownet.optimizer.lr=0.0001"}
	if diff := cmp.Diff(want, args); diff != "" {
		t.Errorf("token order mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenEmptyMarkerOmitted(t *testing.T) {
	n := Mapping(
		Pair{"a", Empty()},
		Pair{"b", Scalar(1)},
	)
	args, err := Args(n)
	if err != nil {
		t.Fatalf("Args: %v", err)
	}
	want := []string{"b=1"}
	if diff := cmp.Diff(want, args); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestFlattenNullRendersNone(t *testing.T) {
	n := Mapping(Pair{"policy", Mapping(Pair{"backward", Null()})})
	args, err := Args(n)
	if err != nil {
		t.Fatalf("Args: %v", err)
	}
	if len(args) != 1 || args[0] != "policy.backward=None" {
		t.Errorf("got %v, want [policy.backward=None]", args)
	}
}

func TestFlattenScalarValueForms(t *testing.T) {
	n := Mapping(
		Pair{"s", Scalar("text")},
		Pair{"i", Scalar(int64(42))},
		Pair{"f", Scalar(0.5)},
		Pair{"t", Scalar(true)},
		Pair{"exp", Scalar(0.0001)},
	)
	args, err := Args(n)
	if err != nil {
		t.Fatalf("Args: %v", err)
	}
	want := []string{"s=text", "i=42", "f=0.5", "t=true", "exp=0.0001"}
	if diff := cmp.Diff(want, args); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestFlattenDottedKeysExpandFirst(t *testing.T) {
	// Dotted sugar and explicit nesting flatten identically.
	dotted := Mapping(Pair{"optimizer.lr", Scalar(0.0001)})
	nested := Mapping(Pair{"optimizer", Mapping(Pair{"lr", Scalar(0.0001)})})

	a1, err := Args(dotted)
	if err != nil {
		t.Fatalf("Args(dotted): %v", err)
	}
	a2, err := Args(nested)
	if err != nil {
		t.Fatalf("Args(nested): %v", err)
	}
	if diff := cmp.Diff(a2, a1); diff != "" {
		t.Errorf("dotted vs nested mismatch (-nested +dotted):\n%s", diff)
	}
}

func TestFlattenScalarAtRoot(t *testing.T) {
	_, err := Flatten(Scalar(1))
	var mt *MalformedTreeError
	if !errors.As(err, &mt) {
		t.Fatalf("want MalformedTreeError, got %v", err)
	}
}

func TestFlattenSequenceRejected(t *testing.T) {
	_, err := Flatten(Mapping(Pair{"jobs", Sequence(Scalar(1))}))
	var mt *MalformedTreeError
	if !errors.As(err, &mt) {
		t.Fatalf("want MalformedTreeError, got %v", err)
	}
	if mt.Path != "jobs" {
		t.Errorf("error path = %q, want %q", mt.Path, "jobs")
	}
}

func TestCommandLine(t *testing.T) {
	n := Mapping(
		Pair{"user", Scalar("$USER")},
		Pair{"+experiments", Scalar("neurips23/crystal-comp-sg-lp.yaml")},
	)
	got, err := CommandLine(n)
	if err != nil {
		t.Fatalf("CommandLine: %v", err)
	}
	want := "user=$USER +experiments=neurips23/crystal-comp-sg-lp.yaml"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFlattenIdempotentRoundTrip(t *testing.T) {
	n := Mapping(
		Pair{"user", Scalar("$USER")},
		Pair{"gflownet", MappingWithBare(
			Scalar("flowmatch"),
			Pair{"policy", Mapping(Pair{"backward", Null()})},
		)},
		Pair{"optimizer", Mapping(Pair{"lr", Scalar(0.0001)})},
	)
	first, err := Args(n)
	if err != nil {
		t.Fatalf("Args: %v", err)
	}

	// Re-ingest the rendered tokens as one mapping of dotted assignments,
	// then flatten again; the sequence must be reproduced exactly.
	var pairs []Pair
	for _, arg := range first {
		k, v, _ := strings.Cut(arg, "=")
		pairs = append(pairs, Pair{k, Scalar(v)})
	}
	second, err := Args(Mapping(pairs...))
	if err != nil {
		t.Fatalf("Args(reparsed): %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("round trip changed token sequence (-first +second):\n%s", diff)
	}
}
