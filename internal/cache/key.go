package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/gowebpki/jcs"
)

// Key derives the cache key for one call of the operation named namespace.
// Positional args keep their order, keyword args are sorted by name, and every
// non-string value is rendered as canonical JSON, so identical calls always map
// to the same key. The namespace stays readable in front of the digest so a
// whole operation can be invalidated with Clear(namespace).
func Key(namespace string, args []any, kwargs map[string]any) (string, error) {
	parts := make([]string, 0, 1+len(args)+len(kwargs))
	parts = append(parts, namespace)

	for i, arg := range args {
		text, err := stringify(arg)
		if err != nil {
			return "", fmt.Errorf("cache key %s arg %d: %w", namespace, i, err)
		}
		parts = append(parts, text)
	}

	names := make([]string, 0, len(kwargs))
	for name := range kwargs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		text, err := stringify(kwargs[name])
		if err != nil {
			return "", fmt.Errorf("cache key %s kwarg %s: %w", namespace, name, err)
		}
		parts = append(parts, name+":"+text)
	}

	encoded, err := json.Marshal(parts)
	if err != nil {
		return "", fmt.Errorf("cache key %s: %w", namespace, err)
	}
	sum := sha256.Sum256(encoded)
	return namespace + ":" + hex.EncodeToString(sum[:]), nil
}

func stringify(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", err
	}
	return string(canonical), nil
}
