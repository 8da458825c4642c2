package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AggregationType string

const (
	AggregationSum             AggregationType = "SUM"
	AggregationAverage         AggregationType = "AVERAGE"
	AggregationWeightedAverage AggregationType = "WEIGHTED_AVERAGE"
	AggregationMax             AggregationType = "MAX"
	AggregationMin             AggregationType = "MIN"
)

const (
	QuestionSingleSelect = "single_select"
	QuestionMultiSelect  = "multi_select"
	QuestionText         = "text"
)

// Variable is a measurable node in the assessment tree. A root variable is
// owned by a lever, a nested one by a parent variable; exactly one of
// LeverID/ParentID is set. Level and Path are derived from the ancestor
// chain and maintained on every structural mutation.
type Variable struct {
	gorm.Model
	Name            string          `gorm:"not null" json:"name"`
	Description     string          `json:"description"`
	Weightage       float64         `gorm:"default:1" json:"weightage"`
	LeverID         *uint           `gorm:"index" json:"lever_id"`
	ParentID        *uint           `gorm:"index" json:"parent_id"`
	Level           int             `json:"level"`
	Path            string          `json:"path"`
	AggregationType AggregationType `gorm:"default:'WEIGHTED_AVERAGE'" json:"aggregation_type"`
	SortOrder       int             `json:"sort_order"`
	IsActive        bool            `gorm:"default:true" json:"is_active"`
	// Version guards structural saves against lost updates.
	Version   int                `gorm:"default:1" json:"version"`
	Children  []Variable         `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	Questions []VariableQuestion `gorm:"foreignKey:VariableID" json:"questions,omitempty"`
}

// QuestionOption is one selectable choice of a select-type question.
// AbsoluteScore feeds the response scoring; InternalScore is kept for
// benchmarking exports and never enters the rollup.
type QuestionOption struct {
	Text          string  `json:"text"`
	AbsoluteScore float64 `json:"absolute_score"`
	InternalScore float64 `json:"internal_score"`
}

type VariableQuestion struct {
	gorm.Model
	VariableID          uint           `gorm:"index;not null" json:"variable_id"`
	Text                string         `gorm:"not null" json:"text"`
	Type                string         `gorm:"not null" json:"type"` // single_select, multi_select, text
	Options             datatypes.JSON `json:"options"`              // []QuestionOption, empty for text type
	IsRequired          bool           `json:"is_required"`
	Weightage           float64        `gorm:"default:1" json:"weightage"`
	SortOrder           int            `json:"sort_order"`
	GroupID             string         `json:"group_id"`
	IsGroupLead         bool           `json:"is_group_lead"`
	RequiresEvidence    bool           `json:"requires_evidence"`
	EvidenceDescription string         `json:"evidence_description"`
}

// ParsedOptions decodes the JSON options column. Text questions have none.
func (q *VariableQuestion) ParsedOptions() ([]QuestionOption, error) {
	if len(q.Options) == 0 {
		return nil, nil
	}
	var opts []QuestionOption
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// EncodeOptions marshals options into the JSON column representation.
func EncodeOptions(opts []QuestionOption) (datatypes.JSON, error) {
	if len(opts) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(opts)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
