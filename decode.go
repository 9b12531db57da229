package store

import (
	"fmt"

	"github.com/goliatone/go-store/internal/hydrate"
)

// Decode hydrates the subtree at path into a typed struct. The second
// return mirrors Get: false means the path did not resolve and the zero T
// is returned without error. Decoding goes through a JSON round-trip, so T
// follows the usual encoding/json field rules.
func Decode[T any](t *Tree, path string) (T, bool, error) {
	var zero T
	if t == nil {
		return zero, false, fmt.Errorf("store: tree is required")
	}

	subtree, ok := t.Get(path)
	if !ok {
		return zero, false, nil
	}

	decoder := hydrate.NewDecoder[T]()
	result, err := decoder.Decode(hydrate.Context{
		Path:  Normalize(path),
		Store: t.scope.Name,
	}, subtree)
	if err != nil {
		return zero, true, err
	}
	return result, true, nil
}
