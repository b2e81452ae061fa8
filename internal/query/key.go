package query

import (
	"fmt"
	"strconv"
	"strings"
)

const keySeparator = ":"

// partEscaper keeps user-typed text from forging separators or list brackets.
var partEscaper = strings.NewReplacer(
	"%", "%25",
	keySeparator, "%3A",
	",", "%2C",
	"[", "%5B",
	"]", "%5D",
)

// Key identifies a cached query: resource name first, then parameters and scope.
// Two reads with equal keys share one entry and one in-flight request.
type Key []any

// K builds a key.
func K(parts ...any) Key {
	return Key(parts)
}

// String renders the key canonically. Equal keys always render equally.
func (k Key) String() string {
	parts := make([]string, len(k))
	for i, part := range k {
		parts[i] = formatPart(part)
	}

	return strings.Join(parts, keySeparator)
}

// HasPrefix reports whether prefix matches the leading elements of k.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if formatPart(k[i]) != formatPart(prefix[i]) {
			return false
		}
	}

	return true
}

func (k Key) clone() Key {
	return append(Key(nil), k...)
}

func formatPart(part any) string {
	switch v := part.(type) {
	case nil:
		return "-"
	case string:
		return partEscaper.Replace(v)
	case []string:
		escaped := make([]string, len(v))
		for i, s := range v {
			escaped[i] = partEscaper.Replace(s)
		}

		return "[" + strings.Join(escaped, ",") + "]"
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
