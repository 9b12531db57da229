// Package pathtree walks and rewrites dynamic state trees built from
// map[string]any mappings. Trees are persistent: a write produces a new
// root sharing untouched subtrees with the old one, and a published node is
// never mutated again. It operates on pre-split path segments; path
// normalization is owned by the root package.
package pathtree

// Lookup walks root one segment at a time. It reports false the moment a
// segment is missing or the current node is not a mapping; it never panics.
// An empty segment list returns the root itself.
func Lookup(root any, segments []string) (any, bool) {
	current := root
	for _, segment := range segments {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		child, ok := node[segment]
		if !ok {
			return nil, false
		}
		current = child
	}
	return current, true
}

// Assign writes value at the given segments and returns the new root. The
// write is copy-on-write: every mapping along the written path is copied and
// the prior root is left untouched, so references handed out before the
// write stay valid for concurrent readers. Untouched sibling subtrees are
// shared between the old and new root. Missing intermediates become fresh
// mappings; an intermediate that exists but is not a mapping is replaced by
// one, so the write always lands. An empty segment list replaces the root
// wholesale.
func Assign(root any, segments []string, value any) any {
	if len(segments) == 0 {
		return value
	}

	prior, _ := root.(map[string]any)
	node := make(map[string]any, len(prior)+1)
	for key, child := range prior {
		node[key] = child
	}

	head := segments[0]
	if len(segments) == 1 {
		node[head] = value
		return node
	}
	node[head] = Assign(node[head], segments[1:], value)
	return node
}
