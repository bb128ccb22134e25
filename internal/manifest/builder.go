package manifest

import (
	"encoding/json"
	"errors"
	"fmt"

	"conflictsuite/internal/dataset"
)

// ErrNotReady reports a Finalize call before the output and integrity report were attached.
var ErrNotReady = errors.New("manifest builder is missing output or integrity report")

// Builder accumulates manifest inputs. It is a value: every With method returns a new builder
// and leaves the receiver unchanged, and Finalize is the only way to read the result.
type Builder struct {
	rows       []dataset.VariantExample
	outputHash string
	imageHash  string
	echo       json.RawMessage
	drops      dataset.DropCounts
	fallbacks  dataset.FallbackCounts
	rawRecords int
	bases      int
	report     *Report
}

// NewBuilder returns an empty builder.
func NewBuilder() Builder {
	return Builder{}
}

// WithConfigEcho records the resolved configuration verbatim.
func (b Builder) WithConfigEcho(echo any) (Builder, error) {
	data, err := json.Marshal(echo)
	if err != nil {
		return b, fmt.Errorf("encode config echo: %w", err)
	}
	b.echo = data
	return b, nil
}

// WithRawRecords records how many raw question records entered the pipeline.
func (b Builder) WithRawRecords(n int) Builder {
	b.rawRecords = n
	return b
}

// WithBaseExamples records how many base examples survived filtering.
func (b Builder) WithBaseExamples(n int) Builder {
	b.bases = n
	return b
}

// WithDrops adds drop counts.
func (b Builder) WithDrops(drops dataset.DropCounts) Builder {
	b.drops = b.drops.Merge(drops)
	return b
}

// WithFallbacks adds fallback counts.
func (b Builder) WithFallbacks(fallbacks dataset.FallbackCounts) Builder {
	merged := dataset.FallbackCounts{}
	for k, v := range b.fallbacks {
		merged = merged.Add(k, v)
	}
	for k, v := range fallbacks {
		merged = merged.Add(k, v)
	}
	b.fallbacks = merged
	return b
}

// WithOutput attaches the emitted rows and the exact bytes written for them.
func (b Builder) WithOutput(rows []dataset.VariantExample, payload []byte) Builder {
	b.rows = append([]dataset.VariantExample(nil), rows...)
	b.outputHash = HashBytes(payload)
	return b
}

// WithImageHash records the hash of a materialized image directory.
func (b Builder) WithImageHash(hash string) Builder {
	b.imageHash = hash
	return b
}

// WithIntegrity attaches the integrity report of the emitted payload.
func (b Builder) WithIntegrity(report Report) Builder {
	b.report = &report
	return b
}

// Finalize produces the manifest. It fails when inputs are missing or any integrity check
// failed, so a manifest always describes a complete, validated file.
func (b Builder) Finalize() (Manifest, error) {
	if b.outputHash == "" || b.report == nil {
		return Manifest{}, ErrNotReady
	}
	if err := b.report.Err(); err != nil {
		return Manifest{}, err
	}
	echo := b.echo
	if echo == nil {
		echo = json.RawMessage("{}")
	}
	return Manifest{
		Counts:          CountRows(b.rows),
		SplitHashes:     SplitHashes(b.rows),
		OutputHash:      b.outputHash,
		ImageHash:       b.imageHash,
		ConfigEcho:      echo,
		IntegrityChecks: b.report.Statuses(),
		Drops:           b.drops.AsMap(),
		Fallbacks:       b.fallbacks.AsMap(),
		Totals: Totals{
			RawRecords:   b.rawRecords,
			BaseExamples: b.bases,
			Variants:     len(b.rows),
			Dropped:      b.drops.Total(),
		},
	}, nil
}
