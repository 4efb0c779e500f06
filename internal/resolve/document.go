package resolve

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"slaunch/internal/tree"
)

// scriptKey is the sub-mapping of a shared block or jobs entry that belongs
// to the target program rather than the scheduler.
const scriptKey = "script"

// JobFileNotFoundError reports a job-definition file that could not be
// located. A missing file is a configuration mistake, not a transient
// condition; it is surfaced once and never retried.
type JobFileNotFoundError struct {
	Path string
	Err  error
}

func (e *JobFileNotFoundError) Error() string {
	return fmt.Sprintf("job definition file not found: %s", e.Path)
}

func (e *JobFileNotFoundError) Unwrap() error { return e.Err }

// Document is a parsed job-definition file: an optional shared block merged
// under every job, plus the ordered list of per-job override blocks.
type Document struct {
	Shared *tree.Node
	Jobs   []*tree.Node
}

// EmptyDocument returns the document used when no job-definition file is
// given: no shared block and a single empty job, so a bare invocation still
// resolves exactly one job from defaults plus the command line.
func EmptyDocument() *Document {
	return &Document{Shared: tree.Mapping(), Jobs: []*tree.Node{tree.Mapping()}}
}

// LoadDocument reads and parses a YAML job-definition file, preserving
// mapping key order as written.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &JobFileNotFoundError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("read job definition %s: %w", path, err)
	}
	root, err := tree.DecodeYAML(data)
	if err != nil {
		return nil, fmt.Errorf("job definition %s: %w", path, err)
	}
	doc, err := ParseDocument(root)
	if err != nil {
		return nil, fmt.Errorf("job definition %s: %w", path, err)
	}
	return doc, nil
}

// ParseDocument interprets a decoded tree as a job-definition document.
// Both top-level keys are optional: a document with neither shared nor jobs
// is valid and resolves one all-defaults job. Every jobs entry must be a
// mapping.
func ParseDocument(root *tree.Node) (*Document, error) {
	if root.Kind() == tree.KindEmpty {
		return EmptyDocument(), nil
	}
	if !root.IsMapping() {
		return nil, &tree.MalformedTreeError{Reason: "job definition must be a mapping"}
	}

	doc := &Document{Shared: tree.Mapping()}
	if shared, ok := root.Child("shared"); ok && shared.Kind() != tree.KindEmpty {
		if !shared.IsMapping() {
			return nil, &tree.MalformedTreeError{Path: "shared", Reason: "must be a mapping"}
		}
		doc.Shared = shared
	}

	jobs, ok := root.Child("jobs")
	if !ok || jobs.Kind() == tree.KindEmpty {
		doc.Jobs = []*tree.Node{tree.Mapping()}
		return doc, nil
	}
	if jobs.Kind() != tree.KindSequence {
		return nil, &tree.MalformedTreeError{Path: "jobs", Reason: "must be a sequence of mappings"}
	}
	for i, entry := range jobs.Items() {
		if !entry.IsMapping() {
			return nil, &tree.MalformedTreeError{
				Path:   "jobs[" + strconv.Itoa(i) + "]",
				Reason: "must be a mapping",
			}
		}
		doc.Jobs = append(doc.Jobs, entry)
	}
	if len(doc.Jobs) == 0 {
		doc.Jobs = []*tree.Node{tree.Mapping()}
	}
	return doc, nil
}
