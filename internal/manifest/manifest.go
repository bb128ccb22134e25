// Package manifest builds the reproducibility manifest of a suite and re-validates emitted files.
package manifest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"conflictsuite/internal/dataset"
)

// Counts groups row counts by dimension.
type Counts struct {
	Split    map[string]int `json:"split"`
	Operator map[string]int `json:"operator"`
	Family   map[string]int `json:"family"`
	Severity map[string]int `json:"severity"`
}

// Totals summarizes record flow through the pipeline.
type Totals struct {
	RawRecords   int `json:"raw_records"`
	BaseExamples int `json:"base_examples"`
	Variants     int `json:"variants"`
	Dropped      int `json:"dropped"`
}

// Manifest is the finalized reproducibility record of one suite.
type Manifest struct {
	Counts          Counts            `json:"counts"`
	SplitHashes     map[string]string `json:"split_hashes"`
	OutputHash      string            `json:"output_hash"`
	ImageHash       string            `json:"image_hash,omitempty"`
	ConfigEcho      json.RawMessage   `json:"config_echo"`
	IntegrityChecks map[string]Status `json:"integrity_checks"`
	Drops           map[string]int    `json:"drops"`
	Fallbacks       map[string]int    `json:"fallbacks"`
	Totals          Totals            `json:"totals"`
}

// CountRows tallies rows per split, operator, family and severity.
func CountRows(rows []dataset.VariantExample) Counts {
	counts := Counts{
		Split:    map[string]int{},
		Operator: map[string]int{},
		Family:   map[string]int{},
		Severity: map[string]int{},
	}
	for _, row := range rows {
		counts.Split[string(row.Split)]++
		counts.Operator[string(row.Operator)]++
		counts.Family[string(row.Family)]++
		counts.Severity[strconv.Itoa(row.Severity)]++
	}
	return counts
}

// SplitHashes hashes the sorted example ids of each split.
func SplitHashes(rows []dataset.VariantExample) map[string]string {
	ids := map[string][]string{}
	for _, row := range rows {
		ids[string(row.Split)] = append(ids[string(row.Split)], row.ExampleID)
	}
	out := make(map[string]string, len(ids))
	for split, list := range ids {
		sort.Strings(list)
		h := sha256.New()
		for _, id := range list {
			h.Write([]byte(id))
			h.Write([]byte{'\n'})
		}
		out[split] = hex.EncodeToString(h.Sum(nil))
	}
	return out
}

// HashBytes returns the hex sha256 of payload.
func HashBytes(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// HashFile returns the hex sha256 of a file's bytes.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", filepath.Base(path), err)
	}
	return HashBytes(data), nil
}

// VerifyOutputHash recomputes the hash of an emitted suite file and compares it with the
// manifest's stored hash.
func VerifyOutputHash(path string, m Manifest) (bool, string, error) {
	got, err := HashFile(path)
	if err != nil {
		return false, "", err
	}
	return got == m.OutputHash, got, nil
}

// Marshal renders the manifest as indented JSON with a trailing newline.
func Marshal(m Manifest) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(m); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// Write stores the manifest at path.
func Write(path string, m Manifest) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Read loads a manifest written by Write.
func Read(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}
