// ABOUTME: Slash-separated collection and document path helpers.
// ABOUTME: Collections have an odd number of segments, documents an even number.

package docstore

import (
	"fmt"
	"strings"
)

// Join builds a path from segments.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// Parent returns the collection containing docPath and the document ID.
func Parent(docPath string) (collection, id string) {
	i := strings.LastIndex(docPath, "/")
	if i < 0 {
		return "", docPath
	}
	return docPath[:i], docPath[i+1:]
}

func ValidateCollection(path string) error {
	n, err := segments(path)
	if err != nil {
		return err
	}
	if n%2 == 0 {
		return fmt.Errorf("%w: %q is a document path, not a collection", ErrInvalidPath, path)
	}
	return nil
}

func ValidateDocument(path string) error {
	n, err := segments(path)
	if err != nil {
		return err
	}
	if n%2 != 0 {
		return fmt.Errorf("%w: %q is a collection path, not a document", ErrInvalidPath, path)
	}
	return nil
}

func segments(path string) (int, error) {
	if path == "" {
		return 0, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	parts := strings.Split(path, "/")
	for _, p := range parts {
		if p == "" {
			return 0, fmt.Errorf("%w: empty segment in %q", ErrInvalidPath, path)
		}
	}
	return len(parts), nil
}

// isDirectChild reports whether key is a document directly under collection.
func isDirectChild(collection, key string) bool {
	rest, ok := strings.CutPrefix(key, collection+"/")
	return ok && rest != "" && !strings.Contains(rest, "/")
}
