package main

import (
	"encoding/json"
	"fmt"
	"io"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// printJSON marshals v, optionally filters it through a JMESPath expression,
// and writes the indented result.
func printJSON(w io.Writer, v any, query string) error {
	filtered, err := applyQuery(v, query)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(filtered, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return writef(w, "%s\n", out)
}

// applyQuery round-trips v through JSON so the expression sees the wire
// field names, then evaluates the JMESPath expression against it. An empty
// expression returns the decoded value unchanged.
func applyQuery(v any, query string) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value for query: %w", err)
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode value for query: %w", err)
	}

	if query == "" {
		return decoded, nil
	}

	result, err := jmespath.Search(query, decoded)
	if err != nil {
		return nil, fmt.Errorf("evaluate query %q: %w", query, err)
	}
	return result, nil
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
