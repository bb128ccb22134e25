// Package consistency keeps normalized records whose image has a caption supporting the answer.
package consistency

import (
	"fmt"
	"sort"

	"conflictsuite/internal/dataset"
	"conflictsuite/internal/family"
	"conflictsuite/internal/normalize"
)

// Captions holds each image's captions in source order.
type Captions map[int64][]dataset.RawCaptionRecord

// GroupCaptions indexes captions by image, ordered by caption_index. Records sharing an index
// keep their input order.
func GroupCaptions(records []dataset.RawCaptionRecord) Captions {
	out := Captions{}
	for _, record := range records {
		out[record.ImageID] = append(out[record.ImageID], record)
	}
	for imageID := range out {
		list := out[imageID]
		sort.SliceStable(list, func(i, j int) bool { return list[i].CaptionIndex < list[j].CaptionIndex })
	}
	return out
}

// Filter applies the family support predicates.
type Filter struct {
	rules     family.Rules
	firstOnly bool
}

// New returns a filter over the given rules.
func New(rules family.Rules) Filter {
	return Filter{rules: rules}
}

// FirstCaptionOnly returns a filter that skips the support check and takes each image's first
// caption as the support caption.
func (f Filter) FirstCaptionOnly() Filter {
	f.firstOnly = true
	return f
}

// Apply scans captions in order and builds a base example from the first one that supports the
// gold answer. Later captions are never consulted once one matches.
func (f Filter) Apply(result normalize.Result, captions []dataset.RawCaptionRecord) (dataset.BaseExample, error) {
	record := result.Record
	if len(captions) == 0 {
		return dataset.BaseExample{}, fmt.Errorf("question %d image %d: %w", record.QuestionID, record.ImageID, dataset.ErrMissingCaption)
	}
	if f.firstOnly {
		return baseExample(result, captions[0]), nil
	}
	handler, err := f.rules.For(result.Family)
	if err != nil {
		return dataset.BaseExample{}, err
	}
	for _, caption := range captions {
		if handler.Supports(record.QuestionText, result.GoldAnswer, caption.CaptionText) {
			return baseExample(result, caption), nil
		}
	}
	return dataset.BaseExample{}, fmt.Errorf("question %d: %w", record.QuestionID, dataset.ErrConsistencyFilterFailed)
}

func baseExample(result normalize.Result, caption dataset.RawCaptionRecord) dataset.BaseExample {
	record := result.Record
	return dataset.BaseExample{
		ExampleID:           dataset.BaseIDForQuestion(record.QuestionID),
		QuestionID:          record.QuestionID,
		SourceImageID:       record.ImageID,
		Family:              result.Family,
		QuestionText:        record.QuestionText,
		GoldAnswer:          result.GoldAnswer,
		SupportCaptionText:  caption.CaptionText,
		SupportCaptionIndex: caption.CaptionIndex,
	}
}
