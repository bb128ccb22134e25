// Package ingest loads raw question and caption records from disk.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"conflictsuite/internal/dataset"
)

// Format names a raw input layout.
type Format string

const (
	// FormatJSONL is one RawQARecord or RawCaptionRecord per line.
	FormatJSONL Format = "jsonl"
	// FormatVQA is the VQAv2 question/annotation files plus COCO caption files.
	FormatVQA Format = "vqa"
)

// Sources lists the input files of one build.
type Sources struct {
	Format      Format
	Questions   []string
	Annotations []string
	Captions    []string
}

// Raw is the loaded input of one build. Drops counts records rejected while loading.
type Raw struct {
	Questions []dataset.RawQARecord
	Captions  []dataset.RawCaptionRecord
	Drops     dataset.DropCounts
}

// Load reads sources in the configured format.
func Load(src Sources) (Raw, error) {
	if len(src.Questions) == 0 || len(src.Captions) == 0 {
		return Raw{}, fmt.Errorf("ingest: question and caption inputs are required")
	}
	switch src.Format {
	case FormatJSONL, "":
		return loadJSONL(src)
	case FormatVQA:
		return loadVQA(src)
	default:
		return Raw{}, fmt.Errorf("ingest: unsupported format %q", src.Format)
	}
}

func loadJSONL(src Sources) (Raw, error) {
	var raw Raw
	for _, path := range src.Questions {
		records, err := dataset.ReadFile[dataset.RawQARecord](path)
		if err != nil {
			return Raw{}, err
		}
		raw.Questions = append(raw.Questions, records...)
	}
	for _, path := range src.Captions {
		records, err := dataset.ReadFile[dataset.RawCaptionRecord](path)
		if err != nil {
			return Raw{}, err
		}
		raw.Captions = append(raw.Captions, records...)
	}
	return raw, nil
}

type vqaQuestions struct {
	Questions []struct {
		QuestionID int64  `json:"question_id"`
		ImageID    int64  `json:"image_id"`
		Question   string `json:"question"`
	} `json:"questions"`
}

type vqaAnnotations struct {
	Annotations []struct {
		QuestionID           int64  `json:"question_id"`
		MultipleChoiceAnswer string `json:"multiple_choice_answer"`
	} `json:"annotations"`
}

type cocoCaptions struct {
	Annotations []struct {
		ImageID int64  `json:"image_id"`
		Caption string `json:"caption"`
	} `json:"annotations"`
}

// loadVQA joins questions with their annotated answers. Questions without an annotation are
// dropped as missing_annotation. Caption indexes follow order of appearance across files.
func loadVQA(src Sources) (Raw, error) {
	answers := map[int64]string{}
	for _, path := range src.Annotations {
		var doc vqaAnnotations
		if err := readJSON(path, &doc); err != nil {
			return Raw{}, err
		}
		for _, ann := range doc.Annotations {
			answers[ann.QuestionID] = ann.MultipleChoiceAnswer
		}
	}

	raw := Raw{Drops: dataset.DropCounts{}}
	for _, path := range src.Questions {
		var doc vqaQuestions
		if err := readJSON(path, &doc); err != nil {
			return Raw{}, err
		}
		for _, q := range doc.Questions {
			answer, ok := answers[q.QuestionID]
			if !ok {
				raw.Drops = raw.Drops.Add(dataset.DropMissingAnnotation, 1)
				continue
			}
			raw.Questions = append(raw.Questions, dataset.RawQARecord{
				QuestionID:   q.QuestionID,
				ImageID:      q.ImageID,
				QuestionText: q.Question,
				RawAnswer:    answer,
			})
		}
	}

	next := map[int64]int{}
	for _, path := range src.Captions {
		var doc cocoCaptions
		if err := readJSON(path, &doc); err != nil {
			return Raw{}, err
		}
		for _, ann := range doc.Annotations {
			raw.Captions = append(raw.Captions, dataset.RawCaptionRecord{
				ImageID:      ann.ImageID,
				CaptionText:  ann.Caption,
				CaptionIndex: next[ann.ImageID],
			})
			next[ann.ImageID]++
		}
	}
	return raw, nil
}

func readJSON(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
