package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"conflictsuite/internal/dataset"
)

var (
	fixtureColors  = []string{"red", "blue", "green", "yellow", "white"}
	fixtureAnimals = []string{"dogs", "cats", "horses", "sheep", "birds"}
	fixtureThings  = []string{"bus", "car", "kite", "boat", "truck"}
)

// Fixture is a small raw corpus where every family has supported questions on every image,
// plus one record per drop reason the filter stages count.
type Fixture struct {
	Questions []dataset.RawQARecord
	Captions  []dataset.RawCaptionRecord
}

// SuiteFixture builds a corpus over the given number of images.
func SuiteFixture(images int) Fixture {
	var fx Fixture
	for i := 0; i < images; i++ {
		imageID := int64(1000 + i)
		color := fixtureColors[i%len(fixtureColors)]
		animal := fixtureAnimals[i%len(fixtureAnimals)]
		thing := fixtureThings[(i/2)%len(fixtureThings)]
		n := 2 + i%4
		base := int64(i * 10)
		fx.Questions = append(fx.Questions,
			dataset.RawQARecord{QuestionID: base + 1, ImageID: imageID, QuestionText: fmt.Sprintf("Are there any %s?", animal), RawAnswer: "yes"},
			dataset.RawQARecord{QuestionID: base + 2, ImageID: imageID, QuestionText: fmt.Sprintf("How many %s are there?", animal), RawAnswer: fmt.Sprint(n)},
			dataset.RawQARecord{QuestionID: base + 3, ImageID: imageID, QuestionText: fmt.Sprintf("What color is the %s?", thing), RawAnswer: color},
		)
		fx.Captions = append(fx.Captions,
			dataset.RawCaptionRecord{ImageID: imageID, CaptionText: fmt.Sprintf("A %s %s parked on a quiet street.", color, thing), CaptionIndex: 0},
			dataset.RawCaptionRecord{ImageID: imageID, CaptionText: fmt.Sprintf("There are %d %s next to the %s %s.", n, animal, color, thing), CaptionIndex: 1},
		)
	}
	fx.Questions = append(fx.Questions,
		dataset.RawQARecord{QuestionID: 900001, ImageID: 1000, QuestionText: "Where is the bus going?", RawAnswer: "home"},
		dataset.RawQARecord{QuestionID: 900002, ImageID: 1000, QuestionText: "How many wheels?", RawAnswer: "lots"},
		dataset.RawQARecord{QuestionID: 900003, ImageID: 1000, QuestionText: "Is there a giraffe?", RawAnswer: "yes"},
		dataset.RawQARecord{QuestionID: 900004, ImageID: 999999, QuestionText: "Is there a dog?", RawAnswer: "yes"},
	)
	return fx
}

// Write stores the fixture as questions.jsonl and captions.jsonl under dir.
func (fx Fixture) Write(dir string) (questions, captions string, err error) {
	questions = filepath.Join(dir, "questions.jsonl")
	captions = filepath.Join(dir, "captions.jsonl")
	if err := dataset.WriteFile(questions, fx.Questions); err != nil {
		return "", "", fmt.Errorf("write questions: %w", err)
	}
	if err := dataset.WriteFile(captions, fx.Captions); err != nil {
		return "", "", fmt.Errorf("write captions: %w", err)
	}
	return questions, captions, nil
}

// WriteJSONL is Write for tests.
func (fx Fixture) WriteJSONL(t testing.TB, dir string) (questions, captions string) {
	t.Helper()
	questions, captions, err := fx.Write(dir)
	if err != nil {
		t.Fatalf("%v", err)
	}
	return questions, captions
}
