package services

import (
	"testing"

	"esgframe/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setAggregation(t *testing.T, store *memStore, id uint, agg models.AggregationType) {
	t.Helper()
	v, err := store.VariableByID(id)
	require.NoError(t, err)
	v.AggregationType = agg
	require.NoError(t, store.SaveVariable(v))
}

func setWeight(t *testing.T, store *memStore, id uint, w float64) {
	t.Helper()
	v, err := store.VariableByID(id)
	require.NoError(t, err)
	v.Weightage = w
	require.NoError(t, store.SaveVariable(v))
}

func TestComputeScoreQuestionAverageAndSum(t *testing.T) {
	store := newMemStore()
	_, leverID := seedFramework(t, store)
	hier := NewHierarchyService(store)
	scorer := NewScoreService(store)

	v := mustCreateRoot(t, hier, leverID, "Energy")
	q1 := addQuestion(t, store, v.ID, "Q1", 1, nil)
	q2 := addQuestion(t, store, v.ID, "Q2", 2, nil)

	resp := addResponse(t, store, 1)
	addAnswer(t, store, resp.ID, q1.ID, 4)
	addAnswer(t, store, resp.ID, q2.ID, 10)

	setAggregation(t, store, v.ID, models.AggregationAverage)
	score, err := scorer.ComputeScore(v.ID, resp.ID)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, score, 1e-9, "(4*1 + 10*2) / (1+2)")

	setAggregation(t, store, v.ID, models.AggregationSum)
	score, err = scorer.ComputeScore(v.ID, resp.ID)
	require.NoError(t, err)
	assert.InDelta(t, 24.0, score, 1e-9, "4*1 + 10*2")
}

func TestComputeScoreSkipsMissingAnswers(t *testing.T) {
	store := newMemStore()
	_, leverID := seedFramework(t, store)
	hier := NewHierarchyService(store)
	scorer := NewScoreService(store)

	v := mustCreateRoot(t, hier, leverID, "Energy")
	answered := addQuestion(t, store, v.ID, "Answered", 1, nil)
	addQuestion(t, store, v.ID, "Skipped", 3, nil)

	resp := addResponse(t, store, 1)
	addAnswer(t, store, resp.ID, answered.ID, 5)

	setAggregation(t, store, v.ID, models.AggregationAverage)
	score, err := scorer.ComputeScore(v.ID, resp.ID)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, score, 1e-9,
		"an unanswered question contributes to neither score nor weight: 5/1, not 5/4")
}

func TestComputeScoreChildWeightCountsUnconditionally(t *testing.T) {
	store := newMemStore()
	_, leverID := seedFramework(t, store)
	hier := NewHierarchyService(store)
	scorer := NewScoreService(store)

	parent := mustCreateRoot(t, hier, leverID, "Parent")
	scored := mustCreateChild(t, hier, parent.ID, "Scored")
	unscored := mustCreateChild(t, hier, parent.ID, "Unscored")
	setWeight(t, store, scored.ID, 1)
	setWeight(t, store, unscored.ID, 1)

	q := addQuestion(t, store, scored.ID, "Q", 1, nil)
	resp := addResponse(t, store, 1)
	addAnswer(t, store, resp.ID, q.ID, 8)

	setAggregation(t, store, parent.ID, models.AggregationAverage)
	score, err := scorer.ComputeScore(parent.ID, resp.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, score, 1e-9,
		"a child with score 0 still contributes its weight: (8*1 + 0*1) / 2")
}

func TestComputeScoreRecursesThroughTree(t *testing.T) {
	store := newMemStore()
	_, leverID := seedFramework(t, store)
	hier := NewHierarchyService(store)
	scorer := NewScoreService(store)

	root := mustCreateRoot(t, hier, leverID, "Root")
	child := mustCreateChild(t, hier, root.ID, "Child")
	grandchild := mustCreateChild(t, hier, child.ID, "Grandchild")
	setWeight(t, store, child.ID, 2)
	setWeight(t, store, grandchild.ID, 1)
	setAggregation(t, store, root.ID, models.AggregationWeightedAverage)
	setAggregation(t, store, child.ID, models.AggregationWeightedAverage)
	setAggregation(t, store, grandchild.ID, models.AggregationAverage)

	q := addQuestion(t, store, grandchild.ID, "Q", 1, nil)
	resp := addResponse(t, store, 1)
	addAnswer(t, store, resp.ID, q.ID, 6)

	// grandchild = 6; child = (6*1)/1 = 6; root = (6*2)/2 = 6.
	score, err := scorer.ComputeScore(root.ID, resp.ID)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, score, 1e-9)
}

func TestComputeScoreMaxMinWeightedContributions(t *testing.T) {
	store := newMemStore()
	_, leverID := seedFramework(t, store)
	hier := NewHierarchyService(store)
	scorer := NewScoreService(store)

	v := mustCreateRoot(t, hier, leverID, "Energy")
	q1 := addQuestion(t, store, v.ID, "Q1", 1, nil)
	q2 := addQuestion(t, store, v.ID, "Q2", 3, nil)

	resp := addResponse(t, store, 1)
	addAnswer(t, store, resp.ID, q1.ID, 10) // contribution 10
	addAnswer(t, store, resp.ID, q2.ID, 2)  // contribution 6

	setAggregation(t, store, v.ID, models.AggregationMax)
	score, err := scorer.ComputeScore(v.ID, resp.ID)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, score, 1e-9, "MAX takes the largest weighted contribution, not a sum")

	setAggregation(t, store, v.ID, models.AggregationMin)
	score, err = scorer.ComputeScore(v.ID, resp.ID)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, score, 1e-9)
}

func TestComputeScoreZeroWeightIsZero(t *testing.T) {
	store := newMemStore()
	_, leverID := seedFramework(t, store)
	hier := NewHierarchyService(store)
	scorer := NewScoreService(store)

	v := mustCreateRoot(t, hier, leverID, "Empty")
	resp := addResponse(t, store, 1)

	for _, agg := range []models.AggregationType{
		models.AggregationSum, models.AggregationAverage,
		models.AggregationWeightedAverage, models.AggregationMax, models.AggregationMin,
	} {
		setAggregation(t, store, v.ID, agg)
		score, err := scorer.ComputeScore(v.ID, resp.ID)
		require.NoError(t, err)
		assert.Zero(t, score, "aggregation %s over nothing", agg)
	}
}

func TestComputeScoreUnknownResponse(t *testing.T) {
	store := newMemStore()
	_, leverID := seedFramework(t, store)
	hier := NewHierarchyService(store)
	scorer := NewScoreService(store)

	v := mustCreateRoot(t, hier, leverID, "Energy")
	_, err := scorer.ComputeScore(v.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScoreAnswerValue(t *testing.T) {
	opts := []models.QuestionOption{
		{Text: "Never", AbsoluteScore: 0},
		{Text: "Sometimes", AbsoluteScore: 5},
		{Text: "Always", AbsoluteScore: 10},
	}

	assert.Equal(t, 5.0, ScoreAnswerValue(models.QuestionSingleSelect, opts, "Sometimes"))
	assert.Equal(t, 0.0, ScoreAnswerValue(models.QuestionSingleSelect, opts, "Not an option"))
	assert.Equal(t, 15.0, ScoreAnswerValue(models.QuestionMultiSelect, opts, `["Sometimes","Always"]`))
	assert.Equal(t, 5.0, ScoreAnswerValue(models.QuestionMultiSelect, opts, `["Sometimes","Unknown"]`),
		"unmatched selections contribute nothing")
	assert.Equal(t, 10.0, ScoreAnswerValue(models.QuestionMultiSelect, opts, "Always"),
		"a bare value counts as a single selection")
	assert.Equal(t, 0.0, ScoreAnswerValue(models.QuestionText, nil, "free text is never auto-scored"))
}

func seedSurveyWithQuestions(t *testing.T, store *memStore) (*models.Survey, []models.SurveyQuestion) {
	t.Helper()
	_, leverID := seedFramework(t, store)
	hier := NewHierarchyService(store)
	asm := NewAssemblerService(store)

	v := mustCreateRoot(t, hier, leverID, "Energy")
	addQuestion(t, store, v.ID, "Grid mix disclosed?", 1, []models.QuestionOption{
		{Text: "Yes", AbsoluteScore: 10}, {Text: "No", AbsoluteScore: 0},
	})
	addQuestion(t, store, v.ID, "Renewables share?", 2, []models.QuestionOption{
		{Text: ">50%", AbsoluteScore: 10}, {Text: "<50%", AbsoluteScore: 4},
	})

	survey := &models.Survey{Title: "Baseline", IsActive: true}
	survey.ID = store.id()
	store.surveys[survey.ID] = survey

	frozen, err := asm.FreezeSurvey(survey.ID, Selection{LeverIDs: []uint{leverID}})
	require.NoError(t, err)
	require.Len(t, frozen, 2)
	return survey, frozen
}

func TestSubmitResponseScoresAnswers(t *testing.T) {
	store := newMemStore()
	survey, frozen := seedSurveyWithQuestions(t, store)
	scorer := NewScoreService(store)

	userID := uint(42)
	resp, err := scorer.SubmitResponse(SubmitInput{
		SurveyID: survey.ID,
		UserID:   &userID,
		Submit:   true,
		Answers: []AnswerInput{
			{SurveyQuestionID: frozen[0].ID, Value: "Yes"},
			{SurveyQuestionID: frozen[1].ID, Value: "<50%"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ResponseSubmitted, resp.Status)
	assert.Empty(t, resp.Token)
	assert.InDelta(t, 6.0, resp.Score, 1e-9, "(10*1 + 4*2) / 3")

	answer, err := store.AnswerFor(resp.ID, frozen[0].SourceQuestionID)
	require.NoError(t, err)
	require.NotNil(t, answer)
	assert.Equal(t, 10.0, answer.Score)

	// Second submission by the same user is rejected.
	_, err = scorer.SubmitResponse(SubmitInput{SurveyID: survey.ID, UserID: &userID})
	assert.ErrorIs(t, err, ErrDuplicateResponse)
}

func TestSubmitResponseAnonymous(t *testing.T) {
	store := newMemStore()
	survey, frozen := seedSurveyWithQuestions(t, store)
	scorer := NewScoreService(store)

	_, err := scorer.SubmitResponse(SubmitInput{SurveyID: survey.ID})
	assert.ErrorIs(t, err, ErrAnonymousNotAllowed)

	survey.AllowAnonymous = true
	store.surveys[survey.ID] = survey

	resp, err := scorer.SubmitResponse(SubmitInput{
		SurveyID: survey.ID,
		Submit:   true,
		Answers:  []AnswerInput{{SurveyQuestionID: frozen[0].ID, Value: "Yes"}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token, "anonymous responses get an access token")
	assert.Nil(t, resp.UserID)
}

func TestSubmitResponseInactiveSurvey(t *testing.T) {
	store := newMemStore()
	survey, _ := seedSurveyWithQuestions(t, store)
	scorer := NewScoreService(store)

	survey.IsActive = false
	store.surveys[survey.ID] = survey

	userID := uint(1)
	_, err := scorer.SubmitResponse(SubmitInput{SurveyID: survey.ID, UserID: &userID})
	assert.ErrorIs(t, err, ErrSurveyInactive)
}

func TestPillarOverview(t *testing.T) {
	store := newMemStore()
	pillarID, leverID := seedFramework(t, store)
	hier := NewHierarchyService(store)
	scorer := NewScoreService(store)

	v := mustCreateRoot(t, hier, leverID, "Energy")
	q := addQuestion(t, store, v.ID, "Q", 1, nil)
	setAggregation(t, store, v.ID, models.AggregationAverage)

	resp := addResponse(t, store, 1)
	addAnswer(t, store, resp.ID, q.ID, 7)

	overview, err := scorer.PillarOverview(resp.ID)
	require.NoError(t, err)
	require.Len(t, overview, 1)
	assert.Equal(t, pillarID, overview[0].PillarID)
	assert.InDelta(t, 7.0, overview[0].Score, 1e-9)
	require.Len(t, overview[0].Levers, 1)
	assert.InDelta(t, 7.0, overview[0].Levers[0].Score, 1e-9)
}

func TestFinalizeDraftResponse(t *testing.T) {
	store := newMemStore()
	survey, frozen := seedSurveyWithQuestions(t, store)
	scorer := NewScoreService(store)

	userID := uint(7)
	draft, err := scorer.SubmitResponse(SubmitInput{
		SurveyID: survey.ID,
		UserID:   &userID,
		Answers: []AnswerInput{
			{SurveyQuestionID: frozen[0].ID, Value: "Yes"},
			{SurveyQuestionID: frozen[1].ID, Value: "<50%"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, models.ResponseDraft, draft.Status)

	final, err := scorer.FinalizeResponse(draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResponseSubmitted, final.Status)
	assert.InDelta(t, 6.0, final.Score, 1e-9, "(10*1 + 4*2) / 3, recomputed from stored answers")

	stored, err := store.ResponseByID(draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResponseSubmitted, stored.Status)
	assert.InDelta(t, 6.0, stored.Score, 1e-9)

	// Finalizing twice leaves the response untouched.
	again, err := scorer.FinalizeResponse(draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResponseSubmitted, again.Status)
	assert.InDelta(t, 6.0, again.Score, 1e-9)
}

func TestFinalizeUnknownResponse(t *testing.T) {
	store := newMemStore()
	seedSurveyWithQuestions(t, store)
	scorer := NewScoreService(store)

	_, err := scorer.FinalizeResponse(999)
	assert.ErrorIs(t, err, ErrNotFound)
}
