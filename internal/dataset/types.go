package dataset

import "fmt"

// Family is the question category that selects normalization, support and edit rules.
type Family string

const (
	FamilyExistence      Family = "existence"
	FamilyCount          Family = "count"
	FamilyAttributeColor Family = "attribute_color"
)

// AllFamilies lists every family in canonical order.
var AllFamilies = []Family{FamilyExistence, FamilyCount, FamilyAttributeColor}

// ParseFamily converts a string into a known family.
func ParseFamily(value string) (Family, error) {
	for _, family := range AllFamilies {
		if string(family) == value {
			return family, nil
		}
	}
	return "", fmt.Errorf("unknown family %q", value)
}

// AnswerType buckets gold answers for donor search.
type AnswerType string

const (
	AnswerBoolean AnswerType = "boolean"
	AnswerInteger AnswerType = "integer"
	AnswerColor   AnswerType = "color"
)

// Operator names the perturbation that produced a variant.
type Operator string

const (
	OperatorClean         Operator = "clean"
	OperatorSwapEasy      Operator = "swap_easy"
	OperatorSwapHard      Operator = "swap_hard"
	OperatorTextEdit      Operator = "text_edit"
	OperatorVisionCorrupt Operator = "vision_corrupt"
	OperatorBoth          Operator = "both"
)

// CorruptModality names which input channel a variant corrupts.
type CorruptModality string

const (
	ModalityNone   CorruptModality = "none"
	ModalityText   CorruptModality = "text"
	ModalityVision CorruptModality = "vision"
	ModalityBoth   CorruptModality = "both"
)

// Action is the oracle arbitration decision for a variant.
type Action string

const (
	ActionTrustVision      Action = "trust_vision"
	ActionTrustText        Action = "trust_text"
	ActionRequireAgreement Action = "require_agreement"
	ActionAbstain          Action = "abstain"
)

// Split is the dataset partition a variant is assigned to.
type Split string

const (
	SplitTrain           Split = "train"
	SplitVal             Split = "val"
	SplitTestID          Split = "test_id"
	SplitTestOODFamily   Split = "test_ood_family"
	SplitTestOODSeverity Split = "test_ood_severity"
	SplitTestOODHardSwap Split = "test_ood_hard_swap"
)

// InDistributionSplits are the splits produced by base image assignment.
var InDistributionSplits = []Split{SplitTrain, SplitVal, SplitTestID}

// IsInDistribution reports whether s is one of train, val or test_id.
func (s Split) IsInDistribution() bool {
	switch s {
	case SplitTrain, SplitVal, SplitTestID:
		return true
	default:
		return false
	}
}

// MaxSeverity is the highest corruption severity.
const MaxSeverity = 3

// RawQARecord is a question/answer pair from the ingestion collaborator.
type RawQARecord struct {
	QuestionID   int64  `json:"question_id"`
	ImageID      int64  `json:"image_id"`
	QuestionText string `json:"question_text"`
	RawAnswer    string `json:"raw_answer"`
}

// RawCaptionRecord is one caption of an image; CaptionIndex preserves source order.
type RawCaptionRecord struct {
	ImageID      int64  `json:"image_id"`
	CaptionText  string `json:"caption_text"`
	CaptionIndex int    `json:"caption_index"`
}

// BaseExample is a normalized, caption-consistent record prior to perturbation.
type BaseExample struct {
	ExampleID           string `json:"example_id"`
	QuestionID          int64  `json:"question_id"`
	SourceImageID       int64  `json:"source_image_id"`
	Family              Family `json:"family"`
	QuestionText        string `json:"question_text"`
	GoldAnswer          string `json:"gold_answer"`
	SupportCaptionText  string `json:"support_caption_text"`
	SupportCaptionIndex int    `json:"support_caption_index"`
}

// BaseIDForQuestion returns the base example id for a question id.
func BaseIDForQuestion(questionID int64) string {
	return fmt.Sprintf("vqa-%d", questionID)
}

// VariantExample is one emitted row of the conflict suite.
type VariantExample struct {
	ExampleID           string          `json:"example_id"`
	BaseID              string          `json:"base_id"`
	SourceImageID       int64           `json:"source_image_id"`
	Family              Family          `json:"family"`
	Operator            Operator        `json:"operator"`
	CorruptModality     CorruptModality `json:"corrupt_modality"`
	Severity            int             `json:"severity"`
	TextInput           string          `json:"text_input"`
	QuestionText        string          `json:"question_text"`
	GoldAnswer          string          `json:"gold_answer"`
	HardSwapFlag        *bool           `json:"hard_swap_flag,omitempty"`
	OracleAction        Action          `json:"oracle_action"`
	Split               Split           `json:"split"`
	HeldoutFamilyFlag   bool            `json:"heldout_family_flag"`
	HeldoutSeverityFlag bool            `json:"heldout_severity_flag"`
	CorruptionFamily    string          `json:"corruption_family,omitempty"`
	CorruptionSeedKey   string          `json:"corruption_seed_key,omitempty"`
}

// VariantID builds base_id::operator[:severity]. Severity is only appended for vision corruption.
func VariantID(baseID string, op Operator, severity int) string {
	if op == OperatorVisionCorrupt {
		return fmt.Sprintf("%s::%s:%d", baseID, op, severity)
	}
	return baseID + "::" + string(op)
}

// HardSwapSatisfied reports whether the row is a hard swap whose similarity constraint held.
func (v VariantExample) HardSwapSatisfied() bool {
	return v.HardSwapFlag != nil && *v.HardSwapFlag
}

// WithHardSwapFlag returns a copy carrying its own flag value.
func (v VariantExample) WithHardSwapFlag(flag bool) VariantExample {
	v.HardSwapFlag = &flag
	return v
}

// WithOracleAction returns a copy labeled with action.
func (v VariantExample) WithOracleAction(action Action) VariantExample {
	v.OracleAction = action
	return v
}

// WithSplit returns a copy assigned to split with the given override flags.
func (v VariantExample) WithSplit(split Split, heldoutFamily, heldoutSeverity bool) VariantExample {
	v.Split = split
	v.HeldoutFamilyFlag = heldoutFamily
	v.HeldoutSeverityFlag = heldoutSeverity
	if v.HardSwapFlag != nil {
		v = v.WithHardSwapFlag(*v.HardSwapFlag)
	}
	return v
}
