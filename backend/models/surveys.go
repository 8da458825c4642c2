package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Survey struct {
	gorm.Model
	Title          string           `gorm:"not null" json:"title"`
	Description    string           `json:"description"`
	AuthorID       uint             `json:"author_id"`
	AllowAnonymous bool             `json:"allow_anonymous"`
	IsActive       bool             `gorm:"default:true" json:"is_active"`
	Questions      []SurveyQuestion `json:"questions,omitempty"`
	Responses      []Response       `json:"responses,omitempty"`
}

// SurveyQuestion is a frozen copy of a VariableQuestion taken when the
// survey is assembled. Later edits to the source question never reach an
// already-created survey.
type SurveyQuestion struct {
	gorm.Model
	SurveyID            uint           `gorm:"index;not null" json:"survey_id"`
	SourceQuestionID    uint           `gorm:"index" json:"source_question_id"`
	VariableID          uint           `gorm:"index" json:"variable_id"`
	Text                string         `json:"text"`
	Type                string         `json:"type"`
	Options             datatypes.JSON `json:"options"`
	IsRequired          bool           `json:"is_required"`
	Weightage           float64        `gorm:"default:1" json:"weightage"`
	SortOrder           int            `json:"sort_order"`
	GroupID             string         `json:"group_id"`
	IsGroupLead         bool           `json:"is_group_lead"`
	RequiresEvidence    bool           `json:"requires_evidence"`
	EvidenceDescription string         `json:"evidence_description"`
}

func (q *SurveyQuestion) ParsedOptions() ([]QuestionOption, error) {
	if len(q.Options) == 0 {
		return nil, nil
	}
	var opts []QuestionOption
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}
