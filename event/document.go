// Package event provides the structured value store and the Event unit that
// flows through StreamSift pipelines.
package event

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/c360/streamsift/errors"
)

// Separator is the path separator for addressing fields inside a Document.
const Separator = "/"

// NormalizePath converts a configuration field path into canonical form:
// a leading separator is ensured and '.'-style fragments are converted to
// separators, so "test.field" and "test/field" address the same value.
// An empty path is a build-time error; lookups never see an invalid path.
func NormalizePath(path string) (string, error) {
	if path == "" {
		return "", errors.NewBuild(errors.ErrInvalidFieldPath, path, "", "empty path")
	}
	if !strings.HasPrefix(path, Separator) {
		path = Separator + path
	}
	return strings.ReplaceAll(path, ".", Separator), nil
}

// Document is an object-shaped structured value addressed by normalized
// slash-delimited paths. It is the single mutable view of one event; the
// pipeline stage currently holding the event owns it exclusively.
type Document struct {
	root map[string]any
}

// NewDocument creates a Document over the given object. A nil map is
// promoted to an empty object.
func NewDocument(data map[string]any) *Document {
	if data == nil {
		data = make(map[string]any)
	}
	return &Document{root: data}
}

// ParseDocument parses raw JSON bytes into a Document. The top-level value
// must be a JSON object; anything else is invalid data.
func ParseDocument(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "Document", "Parse", "empty data")
	}

	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, errors.WrapInvalid(err, "Document", "Parse", "json parsing")
	}
	// JSON null unmarshals into a nil map without error; only object-rooted
	// values are valid documents.
	if root == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "Document", "Parse", "top-level value is not an object")
	}

	return &Document{root: root}, nil
}

// segments splits a normalized path into its fragments.
func segments(path string) []string {
	return strings.Split(strings.TrimPrefix(path, Separator), Separator)
}

// lookup walks the document to the value at path.
func (d *Document) lookup(path string) (any, bool) {
	var current any = d.root
	for _, seg := range segments(path) {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// Exists reports whether a value is present at path.
func (d *Document) Exists(path string) bool {
	_, ok := d.lookup(path)
	return ok
}

// Get returns the value at path, or an error when the field is absent.
// Callers use Exists first when absence is not exceptional.
func (d *Document) Get(path string) (any, error) {
	value, ok := d.lookup(path)
	if !ok {
		return nil, fmt.Errorf("field not found: %s", path)
	}
	return value, nil
}

// GetString returns the string value at path. Absent or non-string fields
// are errors; operator evaluation treats them as soft misses.
func (d *Document) GetString(path string) (string, error) {
	value, err := d.Get(path)
	if err != nil {
		return "", err
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("field is not a string: %s", path)
	}
	return s, nil
}

// GetInt returns the integer value at path. JSON numbers decode as float64,
// so a number qualifies only when it carries an exact integral value.
func (d *Document) GetInt(path string) (int64, error) {
	value, err := d.Get(path)
	if err != nil {
		return 0, err
	}
	switch n := value.(type) {
	case float64:
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, fmt.Errorf("field is not an integer: %s", path)
		}
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case json.Number:
		i, convErr := n.Int64()
		if convErr != nil {
			return 0, fmt.Errorf("field is not an integer: %s", path)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("field is not an integer: %s", path)
	}
}

// Set writes value at path, creating intermediate objects as needed.
// Setting through an existing non-object value is an error.
func (d *Document) Set(path string, value any) error {
	segs := segments(path)
	node := d.root
	for i, seg := range segs {
		if i == len(segs)-1 {
			node[seg] = value
			return nil
		}
		next, ok := node[seg]
		if !ok {
			child := make(map[string]any)
			node[seg] = child
			node = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("cannot set %s: segment %q is not an object", path, seg)
		}
		node = child
	}
	return nil
}

// Delete removes the value at path. It reports whether a value was removed.
func (d *Document) Delete(path string) bool {
	segs := segments(path)
	node := d.root
	for i, seg := range segs {
		if i == len(segs)-1 {
			if _, ok := node[seg]; !ok {
				return false
			}
			delete(node, seg)
			return true
		}
		child, ok := node[seg].(map[string]any)
		if !ok {
			return false
		}
		node = child
	}
	return false
}

// Data returns the underlying object. The caller must respect event
// ownership: only the stage currently holding the event may mutate it.
func (d *Document) Data() map[string]any {
	return d.root
}

// String renders the document as compact JSON, primarily for traces and logs.
func (d *Document) String() string {
	data, err := json.Marshal(d.root)
	if err != nil {
		return "{}"
	}
	return string(data)
}
