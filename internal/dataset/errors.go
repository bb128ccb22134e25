package dataset

import (
	"errors"
	"sort"
)

// Per-record rejection errors. Records failing with one of these are dropped and counted.
var (
	ErrFamilyUnmatched         = errors.New("family_unmatched")
	ErrFamilyInactive          = errors.New("family_inactive")
	ErrAnswerNormalizeFailed   = errors.New("answer_normalize_failed")
	ErrConsistencyFilterFailed = errors.New("consistency_filter_failed")
	ErrMissingCaption          = errors.New("missing_caption")
	ErrMissingAnnotation       = errors.New("missing_annotation")
)

// DropReason is the counted name of a per-record rejection.
type DropReason string

const (
	DropFamilyUnmatched         DropReason = "family_unmatched"
	DropFamilyInactive          DropReason = "family_inactive"
	DropAnswerNormalizeFailed   DropReason = "answer_normalize_failed"
	DropConsistencyFilterFailed DropReason = "consistency_filter_failed"
	DropMissingCaption          DropReason = "missing_caption"
	DropMissingAnnotation       DropReason = "missing_annotation"
	DropMaxPerFamily            DropReason = "max_per_family"
)

var reasonByErr = []struct {
	err    error
	reason DropReason
}{
	{ErrFamilyUnmatched, DropFamilyUnmatched},
	{ErrFamilyInactive, DropFamilyInactive},
	{ErrAnswerNormalizeFailed, DropAnswerNormalizeFailed},
	{ErrConsistencyFilterFailed, DropConsistencyFilterFailed},
	{ErrMissingCaption, DropMissingCaption},
	{ErrMissingAnnotation, DropMissingAnnotation},
}

// ReasonFor maps a rejection error to its drop reason. ok is false for errors that are not
// per-record rejections and must abort the run.
func ReasonFor(err error) (DropReason, bool) {
	for _, entry := range reasonByErr {
		if errors.Is(err, entry.err) {
			return entry.reason, true
		}
	}
	return "", false
}

// DropCounts tallies drops by reason. The zero value is ready to use.
type DropCounts map[DropReason]int

// Add returns a copy of counts with n more drops for reason.
func (counts DropCounts) Add(reason DropReason, n int) DropCounts {
	out := make(DropCounts, len(counts)+1)
	for k, v := range counts {
		out[k] = v
	}
	out[reason] += n
	return out
}

// Merge returns the sum of counts and other.
func (counts DropCounts) Merge(other DropCounts) DropCounts {
	out := make(DropCounts, len(counts)+len(other))
	for k, v := range counts {
		out[k] = v
	}
	for k, v := range other {
		out[k] += v
	}
	return out
}

// Total returns the number of drops across reasons.
func (counts DropCounts) Total() int {
	total := 0
	for _, v := range counts {
		total += v
	}
	return total
}

// AsMap converts counts into a string-keyed map for serialization.
func (counts DropCounts) AsMap() map[string]int {
	out := make(map[string]int, len(counts))
	for k, v := range counts {
		out[string(k)] = v
	}
	return out
}

// Reasons returns the reasons with at least one drop, sorted.
func (counts DropCounts) Reasons() []DropReason {
	out := make([]DropReason, 0, len(counts))
	for k, v := range counts {
		if v > 0 {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FallbackReason names a degraded but non-fatal generation path.
type FallbackReason string

const (
	// FallbackDonorSearchExhausted marks a swap_hard row that reused the easy donor text.
	FallbackDonorSearchExhausted FallbackReason = "donor_search_exhausted"
	// FallbackEasyPoolEmpty marks swap rows that kept the base caption for lack of any
	// donor on another image.
	FallbackEasyPoolEmpty FallbackReason = "easy_pool_empty"
)

// FallbackCounts tallies fallbacks by reason.
type FallbackCounts map[FallbackReason]int

// Add returns a copy of counts with n more fallbacks for reason.
func (counts FallbackCounts) Add(reason FallbackReason, n int) FallbackCounts {
	out := make(FallbackCounts, len(counts)+1)
	for k, v := range counts {
		out[k] = v
	}
	out[reason] += n
	return out
}

// AsMap converts counts into a string-keyed map for serialization.
func (counts FallbackCounts) AsMap() map[string]int {
	out := make(map[string]int, len(counts))
	for k, v := range counts {
		out[string(k)] = v
	}
	return out
}
