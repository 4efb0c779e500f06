package resolve

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"slaunch/internal/tree"
)

// ResolvedJob is the fully merged configuration for one entry of the jobs
// list: the scheduler tree, the script tree, and the script tokens in their
// final command-line order.
type ResolvedJob struct {
	Index  int
	Slurm  *tree.Node
	Script *tree.Node
	// ScriptTokens is the ordered key=value sequence handed to the target
	// program. Ordering follows the document: tokens keep the position of
	// their first appearance across the precedence layers, later layers
	// update values in place, and paths new to a later layer are appended
	// after everything that came before. Values come from the merged tree,
	// so a path whose subtree a later layer replaced outright leaves no
	// stale token behind. This is why the sequence is kept alongside the
	// tree: regrouping the tokens by namespace would reorder them away from
	// the document's own key order.
	ScriptTokens []string
}

// ScriptCommandLine returns the space-joined script override string.
func (r ResolvedJob) ScriptCommandLine() string {
	return strings.Join(r.ScriptTokens, " ")
}

// Resolve produces one ResolvedJob per entry in the document's jobs list,
// in list order. The precedence chain, lowest to highest: built-in
// defaults, the shared block, the job's own entry, recognized command-line
// launcher overrides, and finally command-line script overrides, which
// apply identically to every job in the batch.
//
// Jobs are resolved concurrently; all inputs are immutable and each job
// depends only on its own entry. Output order still matches jobs order —
// that order decides submission order and is user-visible.
func Resolve(ctx context.Context, defaults *tree.Node, doc *Document, launcher, script *tree.Node) ([]ResolvedJob, error) {
	sharedSlurm, sharedScript := splitScript(doc.Shared)

	jobs := make([]ResolvedJob, len(doc.Jobs))
	g, _ := errgroup.WithContext(ctx)
	for i, entry := range doc.Jobs {
		i, entry := i, entry
		g.Go(func() error {
			entrySlurm, entryScript := splitScript(entry)

			slurm := tree.Merge(tree.Merge(tree.Merge(defaults, sharedSlurm), entrySlurm), launcher)
			if _, err := tree.Flatten(slurm); err != nil {
				return err
			}

			scriptTree := tree.Merge(tree.Merge(sharedScript, entryScript), script)
			tokens, err := scriptTokens(scriptTree, sharedScript, entryScript, script)
			if err != nil {
				return err
			}

			jobs[i] = ResolvedJob{Index: i, Slurm: slurm, Script: scriptTree, ScriptTokens: tokens}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return jobs, nil
}

// splitScript separates a block into its scheduler part and its script
// sub-mapping. The script namespace has no built-in defaults; everything in
// it comes from the document or the command line.
func splitScript(n *tree.Node) (slurm, script *tree.Node) {
	n = tree.Normalize(n)
	script = tree.Mapping()
	if !n.IsMapping() {
		return n, script
	}
	var pairs []tree.Pair
	for _, k := range n.Keys() {
		child, _ := n.Child(k)
		if k == scriptKey {
			script = child
			continue
		}
		pairs = append(pairs, tree.Pair{Key: k, Value: child})
	}
	return tree.Mapping(pairs...), script
}

// scriptTokens orders the merged tree's tokens by first appearance across
// the script layers. The merged tree is the single source of paths and
// values; the layers only fix positions. A path that survives the merge
// keeps the position of the layer that introduced it, and a path the merge
// replaced outright (a scalar over a populated subtree, or the reverse) has
// no entry in the merged flatten and drops out, so the command line never
// carries an assignment the merged tree no longer holds. The layers cannot
// order a merged path twice and cannot miss one: every merged leaf and bare
// value originates at the same path in some layer.
func scriptTokens(merged *tree.Node, layers ...*tree.Node) ([]string, error) {
	final, err := tree.Flatten(merged)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(final))
	for _, t := range final {
		values[t.Key()] = tree.FormatScalar(t.Value)
	}

	var order []string
	seen := map[string]bool{}
	for _, layer := range layers {
		toks, err := tree.Flatten(layer)
		if err != nil {
			return nil, err
		}
		for _, t := range toks {
			if key := t.Key(); !seen[key] {
				seen[key] = true
				order = append(order, key)
			}
		}
	}

	var out []string
	for _, key := range order {
		if v, ok := values[key]; ok {
			out = append(out, key+"="+v)
		}
	}
	return out, nil
}
