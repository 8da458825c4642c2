package models

import "gorm.io/gorm"

const (
	ResponseDraft     = "draft"
	ResponseSubmitted = "submitted"
)

// Response is one respondent's submission against a survey. Registered
// users get at most one response per survey; anonymous respondents are
// identified by a generated token instead of a user id.
type Response struct {
	gorm.Model
	SurveyID uint     `gorm:"index;not null" json:"survey_id"`
	UserID   *uint    `gorm:"index" json:"user_id"`
	Token    string   `gorm:"index" json:"token,omitempty"`
	Status   string   `gorm:"default:draft" json:"status"`
	Score    float64  `json:"score"`
	Answers  []Answer `json:"answers,omitempty"`
}

// Answer carries the raw submitted value and the per-question score
// computed at submission time. QuestionID points at the source
// VariableQuestion so tree-level rollups can find it.
type Answer struct {
	gorm.Model
	ResponseID       uint    `gorm:"index;not null" json:"response_id"`
	SurveyQuestionID uint    `gorm:"index" json:"survey_question_id"`
	QuestionID       uint    `gorm:"index" json:"question_id"`
	Value            string  `json:"value"` // multi_select values stored as a JSON array
	Score            float64 `json:"score"`
}
