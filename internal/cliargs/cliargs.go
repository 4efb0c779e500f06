// Package cliargs partitions raw command-line tokens into recognized
// launcher options and opaque script overrides. The launcher's option
// surface is declared up front; every leftover token must be a well-formed
// key=value assignment destined for the target program, applied to every
// job in the batch.
package cliargs

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"slaunch/internal/tree"
)

// UnrecognizedArgumentError reports a token that is neither a recognized
// launcher option nor a well-formed key=value script override. Partitioning
// fails fast, before any job is resolved or any scheduler interaction.
type UnrecognizedArgumentError struct {
	Token  string
	Reason string
}

func (e *UnrecognizedArgumentError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("unrecognized argument %q", e.Token)
	}
	return fmt.Sprintf("unrecognized argument %q: %s", e.Token, e.Reason)
}

// Spec declares the launcher option surface for Partition.
type Spec struct {
	// Value maps a long option name (without dashes) to the configuration
	// key it sets, e.g. "cpus-per-task" -> "cpus_per_task".
	Value map[string]string
	// Bool lists option names that take no value.
	Bool []string
}

// Result is the outcome of partitioning one command line.
type Result struct {
	// Options holds recognized value-option assignments keyed by their
	// configuration key. Last occurrence wins.
	Options map[string]string
	// Flags holds the boolean options that were set.
	Flags map[string]bool
	// Script is the merged tree of key=value script overrides, built as a
	// left-to-right fold of single-key merges so a duplicate key takes its
	// last value.
	Script *tree.Node
}

// assignmentKey matches a plain or dotted configuration key. A leading "+"
// segment is allowed; downstream argument parsers use it for additions.
var assignmentKey = regexp.MustCompile(`^\+?[A-Za-z0-9_][A-Za-z0-9_.+-]*$`)

// Partition classifies tokens. Recognized options may be written
// "--name value" or "--name=value"; boolean options are bare "--name" (an
// explicit "--name=false" is also accepted). A bare "--" routes everything
// after it to the script overrides unconditionally.
func Partition(tokens []string, spec Spec) (*Result, error) {
	bools := make(map[string]bool, len(spec.Bool))
	for _, b := range spec.Bool {
		bools[b] = true
	}

	res := &Result{
		Options: map[string]string{},
		Flags:   map[string]bool{},
		Script:  tree.Mapping(),
	}
	forceScript := false
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok == "--" && !forceScript {
			forceScript = true
			continue
		}
		if !forceScript && strings.HasPrefix(tok, "--") {
			name, value, hasValue := strings.Cut(tok[2:], "=")
			if bools[name] {
				set := true
				if hasValue {
					parsed, err := strconv.ParseBool(value)
					if err != nil {
						return nil, &UnrecognizedArgumentError{Token: tok, Reason: "not a boolean value"}
					}
					set = parsed
				}
				res.Flags[name] = set
				continue
			}
			key, ok := spec.Value[name]
			if !ok {
				return nil, &UnrecognizedArgumentError{Token: tok, Reason: "unknown option"}
			}
			if !hasValue {
				if i+1 >= len(tokens) {
					return nil, &UnrecognizedArgumentError{Token: tok, Reason: "option requires a value"}
				}
				i++
				value = tokens[i]
			}
			res.Options[key] = value
			continue
		}
		if err := foldScriptOverride(res, tok); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func foldScriptOverride(res *Result, tok string) error {
	key, value, ok := strings.Cut(tok, "=")
	if !ok || !assignmentKey.MatchString(key) {
		return &UnrecognizedArgumentError{Token: tok, Reason: "expected key=value"}
	}
	res.Script = tree.Merge(res.Script, tree.Mapping(tree.Pair{Key: key, Value: tree.Scalar(value)}))
	return nil
}
