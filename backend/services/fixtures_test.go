package services

import (
	"testing"

	"esgframe/backend/models"

	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func floatPtr(v float64) *float64 { return &v }

// seedFramework creates an active pillar with one lever and returns their ids.
func seedFramework(t *testing.T, store *memStore) (pillarID, leverID uint) {
	t.Helper()
	pillar := &models.Pillar{Name: "Environmental", Weightage: 1, IsActive: true}
	require.NoError(t, store.SavePillar(pillar))
	lever := &models.Lever{PillarID: pillar.ID, Name: "Emissions", Weightage: 1, IsActive: true}
	require.NoError(t, store.SaveLever(lever))
	return pillar.ID, lever.ID
}

func addLever(t *testing.T, store *memStore, pillarID uint, name string) uint {
	t.Helper()
	lever := &models.Lever{PillarID: pillarID, Name: name, Weightage: 1, IsActive: true}
	require.NoError(t, store.SaveLever(lever))
	return lever.ID
}

func mustCreateRoot(t *testing.T, svc *HierarchyService, leverID uint, name string) *models.Variable {
	t.Helper()
	v, err := svc.CreateVariable(CreateVariableInput{Name: name, LeverID: uintPtr(leverID)})
	require.NoError(t, err)
	return v
}

func mustCreateChild(t *testing.T, svc *HierarchyService, parentID uint, name string) *models.Variable {
	t.Helper()
	v, err := svc.CreateVariable(CreateVariableInput{Name: name, ParentID: uintPtr(parentID)})
	require.NoError(t, err)
	return v
}

func addQuestion(t *testing.T, store *memStore, variableID uint, text string, weight float64, options []models.QuestionOption) *models.VariableQuestion {
	t.Helper()
	opts, err := models.EncodeOptions(options)
	require.NoError(t, err)
	qType := models.QuestionSingleSelect
	if len(options) == 0 {
		qType = models.QuestionText
	}
	q := &models.VariableQuestion{
		VariableID: variableID,
		Text:       text,
		Type:       qType,
		Options:    opts,
		Weightage:  weight,
	}
	require.NoError(t, store.CreateQuestion(q))
	return q
}

func addResponse(t *testing.T, store *memStore, surveyID uint) *models.Response {
	t.Helper()
	r := &models.Response{SurveyID: surveyID, Status: models.ResponseSubmitted}
	require.NoError(t, store.CreateResponse(r))
	return r
}

func addAnswer(t *testing.T, store *memStore, responseID, questionID uint, score float64) {
	t.Helper()
	require.NoError(t, store.CreateAnswers([]*models.Answer{{
		ResponseID: responseID,
		QuestionID: questionID,
		Score:      score,
	}}))
}

// assertTreeInvariants checks the derived-field invariants over every
// stored variable: exclusive ownership, level consistent with the parent
// chain, and path equal to the ancestors' joined names.
func assertTreeInvariants(t *testing.T, store *memStore) {
	t.Helper()
	for _, v := range store.variables {
		hasParent := v.ParentID != nil
		hasLever := v.LeverID != nil
		require.True(t, hasParent != hasLever, "variable %d must have exactly one owner", v.ID)

		if hasLever {
			require.Equal(t, 0, v.Level, "root variable %d", v.ID)
			require.Equal(t, v.Name, v.Path, "root variable %d", v.ID)
			continue
		}
		parent := store.variables[*v.ParentID]
		require.NotNil(t, parent, "variable %d has dangling parent", v.ID)
		require.Equal(t, parent.Level+1, v.Level, "variable %d", v.ID)
		require.Equal(t, parent.Path+PathSeparator+v.Name, v.Path, "variable %d", v.ID)
	}
}
