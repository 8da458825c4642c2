package services

import (
	"fmt"
	"sort"

	"esgframe/backend/models"
)

// AssemblerService resolves a selection over the framework into a flat,
// deduplicated question list and freezes it into a survey. It only uses
// the tree's read path.
type AssemblerService struct {
	store TreeStore
}

func NewAssemblerService(store TreeStore) *AssemblerService {
	return &AssemblerService{store: store}
}

// Selection names the questions to include, either explicitly (ordered
// question ids) or by closure over variables, levers or pillars. A lever
// or pillar selection expands through the parent chain to every variable
// at any depth beneath it.
type Selection struct {
	QuestionIDs []uint `json:"question_ids"`
	VariableIDs []uint `json:"variable_ids"`
	LeverIDs    []uint `json:"lever_ids"`
	PillarIDs   []uint `json:"pillar_ids"`
}

// ResolveSelection expands a selection to the active questions of active
// variables inside it. Explicit question ids keep their given order and
// come first; closure-resolved questions follow ordered by variable path,
// then question sort order. Duplicates across selection kinds collapse.
func (a *AssemblerService) ResolveSelection(sel Selection) ([]models.VariableQuestion, error) {
	seen := make(map[uint]struct{})
	var out []models.VariableQuestion

	if len(sel.QuestionIDs) > 0 {
		qs, err := a.store.QuestionsByIDs(sel.QuestionIDs)
		if err != nil {
			return nil, err
		}
		byID := make(map[uint]models.VariableQuestion, len(qs))
		for _, q := range qs {
			byID[q.ID] = q
		}
		for _, id := range sel.QuestionIDs {
			q, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("question %d: %w", id, ErrNotFound)
			}
			owner, err := a.store.VariableByID(q.VariableID)
			if err != nil {
				return nil, err
			}
			if !owner.IsActive {
				continue
			}
			if _, dup := seen[q.ID]; dup {
				continue
			}
			seen[q.ID] = struct{}{}
			out = append(out, q)
		}
	}

	variables, err := a.selectionVariables(sel)
	if err != nil {
		return nil, err
	}
	sort.Slice(variables, func(i, j int) bool {
		if variables[i].Path != variables[j].Path {
			return variables[i].Path < variables[j].Path
		}
		return variables[i].ID < variables[j].ID
	})
	for _, v := range variables {
		qs, err := a.store.QuestionsByVariable(v.ID)
		if err != nil {
			return nil, err
		}
		for _, q := range qs {
			if _, dup := seen[q.ID]; dup {
				continue
			}
			seen[q.ID] = struct{}{}
			out = append(out, q)
		}
	}
	return out, nil
}

// selectionVariables collects the active-variable closure of the
// variable/lever/pillar parts of a selection.
func (a *AssemblerService) selectionVariables(sel Selection) ([]models.Variable, error) {
	var starts []models.Variable
	for _, id := range sel.VariableIDs {
		v, err := a.store.VariableByID(id)
		if err != nil {
			return nil, err
		}
		starts = append(starts, *v)
	}
	leverIDs := append([]uint{}, sel.LeverIDs...)
	for _, pid := range sel.PillarIDs {
		if _, err := a.store.PillarByID(pid); err != nil {
			return nil, err
		}
		levers, err := a.store.LeversByPillar(pid)
		if err != nil {
			return nil, err
		}
		for _, l := range levers {
			leverIDs = append(leverIDs, l.ID)
		}
	}
	for _, lid := range leverIDs {
		if _, err := a.store.LeverByID(lid); err != nil {
			return nil, err
		}
		roots, err := a.store.RootVariables(lid)
		if err != nil {
			return nil, err
		}
		starts = append(starts, roots...)
	}

	type frame struct {
		v     models.Variable
		depth int
	}
	collected := make(map[uint]models.Variable)
	var stack []frame
	for _, v := range starts {
		stack = append(stack, frame{v: v})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.depth > maxTreeDepth {
			return nil, ErrDepthExceeded
		}
		if !f.v.IsActive {
			continue
		}
		if _, dup := collected[f.v.ID]; dup {
			continue
		}
		collected[f.v.ID] = f.v

		children, err := a.store.Children(f.v.ID)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			stack = append(stack, frame{v: child, depth: f.depth + 1})
		}
	}

	out := make([]models.Variable, 0, len(collected))
	for _, v := range collected {
		out = append(out, v)
	}
	return out, nil
}

// FreezeSurvey resolves the selection and replaces the survey's question
// set with immutable copies of the resolved questions. Once frozen, edits
// or deletions in the source tree never change the survey.
func (a *AssemblerService) FreezeSurvey(surveyID uint, sel Selection) ([]models.SurveyQuestion, error) {
	if _, err := a.store.SurveyByID(surveyID); err != nil {
		return nil, err
	}
	resolved, err := a.ResolveSelection(sel)
	if err != nil {
		return nil, err
	}
	if len(resolved) == 0 {
		return nil, fmt.Errorf("survey %d: %w", surveyID, ErrEmptySelection)
	}

	frozen := make([]*models.SurveyQuestion, 0, len(resolved))
	for i, q := range resolved {
		frozen = append(frozen, &models.SurveyQuestion{
			SurveyID:            surveyID,
			SourceQuestionID:    q.ID,
			VariableID:          q.VariableID,
			Text:                q.Text,
			Type:                q.Type,
			Options:             q.Options,
			IsRequired:          q.IsRequired,
			Weightage:           q.Weightage,
			SortOrder:           i + 1,
			GroupID:             q.GroupID,
			IsGroupLead:         q.IsGroupLead,
			RequiresEvidence:    q.RequiresEvidence,
			EvidenceDescription: q.EvidenceDescription,
		})
	}

	err = a.store.Transaction(func(tx TreeStore) error {
		if err := tx.DeleteSurveyQuestionsBySurvey(surveyID); err != nil {
			return err
		}
		return tx.CreateSurveyQuestions(frozen)
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.SurveyQuestion, 0, len(frozen))
	for _, q := range frozen {
		out = append(out, *q)
	}
	return out, nil
}

// QuestionRecord is one already-parsed row of a spreadsheet import.
type QuestionRecord struct {
	Text                string                  `json:"text"`
	Type                string                  `json:"type"`
	Options             []models.QuestionOption `json:"options"`
	IsRequired          bool                    `json:"is_required"`
	Weightage           float64                 `json:"weightage"`
	SortOrder           int                     `json:"sort_order"`
	GroupID             string                  `json:"group_id"`
	IsGroupLead         bool                    `json:"is_group_lead"`
	RequiresEvidence    bool                    `json:"requires_evidence"`
	EvidenceDescription string                  `json:"evidence_description"`
}

// ImportQuestions bulk-creates questions under a variable. Select-type
// records must carry options and text records must not; any invalid record
// rejects the whole batch before a single write.
func (a *AssemblerService) ImportQuestions(variableID uint, records []QuestionRecord) ([]models.VariableQuestion, error) {
	if _, err := a.store.VariableByID(variableID); err != nil {
		return nil, err
	}

	created := make([]*models.VariableQuestion, 0, len(records))
	for i, rec := range records {
		if err := validateQuestionRecord(rec); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		opts, err := models.EncodeOptions(rec.Options)
		if err != nil {
			return nil, err
		}
		weight := rec.Weightage
		if weight == 0 {
			weight = 1
		}
		created = append(created, &models.VariableQuestion{
			VariableID:          variableID,
			Text:                rec.Text,
			Type:                rec.Type,
			Options:             opts,
			IsRequired:          rec.IsRequired,
			Weightage:           weight,
			SortOrder:           rec.SortOrder,
			GroupID:             rec.GroupID,
			IsGroupLead:         rec.IsGroupLead,
			RequiresEvidence:    rec.RequiresEvidence,
			EvidenceDescription: rec.EvidenceDescription,
		})
	}

	err := a.store.Transaction(func(tx TreeStore) error {
		return tx.CreateQuestions(created)
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.VariableQuestion, 0, len(created))
	for _, q := range created {
		out = append(out, *q)
	}
	return out, nil
}

func validateQuestionRecord(rec QuestionRecord) error {
	switch rec.Type {
	case models.QuestionSingleSelect, models.QuestionMultiSelect:
		if len(rec.Options) == 0 {
			return fmt.Errorf("%q: %w", rec.Text, ErrInvalidQuestion)
		}
	case models.QuestionText:
		if len(rec.Options) > 0 {
			return fmt.Errorf("%q: %w", rec.Text, ErrInvalidQuestion)
		}
	default:
		return fmt.Errorf("%q has unknown type %q: %w", rec.Text, rec.Type, ErrInvalidQuestion)
	}
	return nil
}

// UpdateQuestion edits one question in place under the same type/option
// rules as the bulk import. The variable id guards against editing a
// question through another variable's route.
func (a *AssemblerService) UpdateQuestion(variableID, questionID uint, rec QuestionRecord) (*models.VariableQuestion, error) {
	q, err := a.store.QuestionByID(questionID)
	if err != nil {
		return nil, err
	}
	if q.VariableID != variableID {
		return nil, fmt.Errorf("question %d does not belong to variable %d: %w", questionID, variableID, ErrNotFound)
	}
	if err := validateQuestionRecord(rec); err != nil {
		return nil, err
	}
	opts, err := models.EncodeOptions(rec.Options)
	if err != nil {
		return nil, err
	}
	weight := rec.Weightage
	if weight == 0 {
		weight = 1
	}

	q.Text = rec.Text
	q.Type = rec.Type
	q.Options = opts
	q.IsRequired = rec.IsRequired
	q.Weightage = weight
	q.SortOrder = rec.SortOrder
	q.GroupID = rec.GroupID
	q.IsGroupLead = rec.IsGroupLead
	q.RequiresEvidence = rec.RequiresEvidence
	q.EvidenceDescription = rec.EvidenceDescription
	if err := a.store.SaveQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

// DeleteQuestion removes one question together with any answers recorded
// against it. Frozen survey copies of the question are kept, so existing
// surveys keep rendering it.
func (a *AssemblerService) DeleteQuestion(variableID, questionID uint) error {
	q, err := a.store.QuestionByID(questionID)
	if err != nil {
		return err
	}
	if q.VariableID != variableID {
		return fmt.Errorf("question %d does not belong to variable %d: %w", questionID, variableID, ErrNotFound)
	}
	return a.store.Transaction(func(tx TreeStore) error {
		if err := tx.DeleteAnswersForQuestions([]uint{questionID}); err != nil {
			return err
		}
		return tx.DeleteQuestion(questionID)
	})
}
