package description

import "strings"

const (
	timestampsDir = "Timestamps"
	outputDir     = "Youtube"
	itemExt       = ".txt"
)

// TimestampPrefix is the listing prefix for a subject's timestamp inputs.
func TimestampPrefix(subject string) string {
	return subject + "/" + timestampsDir + "/"
}

// OutputPrefix is the listing prefix for a subject's rendered descriptions.
func OutputPrefix(subject string) string {
	return subject + "/" + outputDir + "/"
}

// HasPathSeparator reports whether name holds a slash or backslash.
func HasPathSeparator(name string) bool {
	return strings.ContainsAny(name, `/\`)
}

// IsDotSegment reports whether name is "." or "..", which would address a
// parent or the current directory once joined into a key.
func IsDotSegment(name string) bool {
	return name == "." || name == ".."
}

func TimestampKey(subject, item string) string {
	return TimestampPrefix(subject) + item + itemExt
}

func OutputKey(subject, item string) string {
	return OutputPrefix(subject) + item + itemExt
}

// ItemFromKey derives the item identifier from a key listed under prefix.
// Directory placeholders and keys without the text extension are rejected.
func ItemFromKey(prefix, key string) (string, bool) {
	if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, itemExt) {
		return "", false
	}
	item := strings.TrimSuffix(strings.TrimPrefix(key, prefix), itemExt)
	if item == "" {
		return "", false
	}
	return item, true
}

// ItemsFromKeys maps listed keys to item identifiers, keeping listing order.
func ItemsFromKeys(prefix string, keys []string) []string {
	items := make([]string, 0, len(keys))
	for _, key := range keys {
		if item, ok := ItemFromKey(prefix, key); ok {
			items = append(items, item)
		}
	}
	return items
}
