package models

import "gorm.io/gorm"

// Pillar is a top-level ESG category (Environmental, Social, Governance).
type Pillar struct {
	gorm.Model
	Name        string  `gorm:"uniqueIndex" json:"name"`
	Description string  `json:"description"`
	Weightage   float64 `gorm:"default:1" json:"weightage"`
	IsActive    bool    `gorm:"default:true" json:"is_active"`
	Levers      []Lever `json:"levers,omitempty"`
}

// Lever is an action area owned by exactly one Pillar. Root variables of
// the tree hang off a lever.
type Lever struct {
	gorm.Model
	PillarID    uint       `gorm:"index;uniqueIndex:idx_levers_pillar_name" json:"pillar_id"`
	Name        string     `gorm:"uniqueIndex:idx_levers_pillar_name" json:"name"`
	Description string     `json:"description"`
	Weightage   float64    `gorm:"default:1" json:"weightage"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	Variables   []Variable `gorm:"foreignKey:LeverID" json:"variables,omitempty"`
}
