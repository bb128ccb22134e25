package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

const maxLineBytes = 16 * 1024 * 1024

// ReadLines returns the non-blank lines of a JSONL stream.
func ReadLines(r io.Reader) ([][]byte, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	var lines [][]byte
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		lines = append(lines, append([]byte(nil), line...))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan jsonl: %w", err)
	}
	return lines, nil
}

// DecodeLines decodes every JSONL line into a T, reporting the 1-based line on failure.
func DecodeLines[T any](r io.Reader) ([]T, error) {
	lines, err := ReadLines(r)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(lines))
	for i, line := range lines {
		var item T
		decoder := json.NewDecoder(bytes.NewReader(line))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&item); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out = append(out, item)
	}
	return out, nil
}

// ReadFile decodes a JSONL file into records of type T.
func ReadFile[T any](path string) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer file.Close()
	items, err := DecodeLines[T](file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return items, nil
}

// EncodeLines writes one JSON object per line in the given order.
func EncodeLines[T any](w io.Writer, items []T) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	for i := range items {
		if err := encoder.Encode(items[i]); err != nil {
			return fmt.Errorf("encode line %d: %w", i+1, err)
		}
	}
	return nil
}

// WriteFile writes items as JSONL, creating parent directories.
func WriteFile[T any](path string, items []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	var buf bytes.Buffer
	if err := EncodeLines(&buf, items); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// CanonicalVariants returns a copy of rows sorted by example_id.
func CanonicalVariants(rows []VariantExample) []VariantExample {
	out := append([]VariantExample(nil), rows...)
	sort.Slice(out, func(i, j int) bool { return out[i].ExampleID < out[j].ExampleID })
	return out
}

// CanonicalBases returns a copy of bases sorted by example_id.
func CanonicalBases(bases []BaseExample) []BaseExample {
	out := append([]BaseExample(nil), bases...)
	sort.Slice(out, func(i, j int) bool { return out[i].ExampleID < out[j].ExampleID })
	return out
}

// MarshalVariants serializes rows in canonical order.
func MarshalVariants(rows []VariantExample) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeLines(&buf, CanonicalVariants(rows)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
