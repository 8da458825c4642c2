package services

import (
	"encoding/json"
	"fmt"

	"esgframe/backend/models"

	"github.com/google/uuid"
)

// ScoreService computes per-question answer scores at submission time and
// rolls them up through the variable tree according to each node's
// aggregation type.
type ScoreService struct {
	store TreeStore
}

func NewScoreService(store TreeStore) *ScoreService {
	return &ScoreService{store: store}
}

// ComputeScore aggregates the score of a variable for one response.
//
// Each directly attached question with a recorded answer contributes
// answer.score * question.weightage to the running score and
// question.weightage to the total weight; unanswered questions contribute
// to neither, so they don't skew averages. Each child variable contributes
// its own recursively aggregated score times its weightage, and its
// weightage counts toward the total even when its score is zero. The
// node's aggregation type then folds the accumulators: AVERAGE and
// WEIGHTED_AVERAGE divide by the total weight, MAX/MIN take the extremum
// of the individual weighted contributions, SUM (and anything
// unrecognized) passes the raw sum through. A node with zero total weight
// scores 0.
//
// The walk is a two-pass explicit traversal (collect pre-order, fold in
// reverse) rather than recursion, so depth is bounded by maxTreeDepth and
// never by the goroutine stack.
func (s *ScoreService) ComputeScore(variableID, responseID uint) (float64, error) {
	if _, err := s.store.ResponseByID(responseID); err != nil {
		return 0, err
	}

	type node struct {
		v        models.Variable
		children []int
	}

	root, err := s.store.VariableByID(variableID)
	if err != nil {
		return 0, err
	}

	nodes := []node{{v: *root}}
	type frame struct {
		idx   int
		depth int
	}
	stack := []frame{{idx: 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.depth > maxTreeDepth {
			return 0, ErrDepthExceeded
		}

		children, err := s.store.Children(nodes[f.idx].v.ID)
		if err != nil {
			return 0, err
		}
		for _, child := range children {
			nodes = append(nodes, node{v: child})
			ci := len(nodes) - 1
			nodes[f.idx].children = append(nodes[f.idx].children, ci)
			stack = append(stack, frame{idx: ci, depth: f.depth + 1})
		}
	}

	// Children sit after their parent in pre-order, so folding in reverse
	// visits every child before its parent.
	scores := make([]float64, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		var score, totalWeight float64
		var contributions []float64

		questions, err := s.store.QuestionsByVariable(n.v.ID)
		if err != nil {
			return 0, err
		}
		for _, q := range questions {
			answer, err := s.store.AnswerFor(responseID, q.ID)
			if err != nil {
				return 0, err
			}
			if answer == nil {
				continue
			}
			c := answer.Score * q.Weightage
			score += c
			totalWeight += q.Weightage
			contributions = append(contributions, c)
		}
		for _, ci := range n.children {
			child := nodes[ci].v
			c := scores[ci] * child.Weightage
			score += c
			totalWeight += child.Weightage
			contributions = append(contributions, c)
		}

		scores[i] = foldAggregate(n.v.AggregationType, score, totalWeight, contributions)
	}
	return scores[0], nil
}

func foldAggregate(t models.AggregationType, score, totalWeight float64, contributions []float64) float64 {
	if totalWeight == 0 {
		return 0
	}
	switch t {
	case models.AggregationAverage, models.AggregationWeightedAverage:
		return score / totalWeight
	case models.AggregationMax:
		out := contributions[0]
		for _, c := range contributions[1:] {
			if c > out {
				out = c
			}
		}
		return out
	case models.AggregationMin:
		out := contributions[0]
		for _, c := range contributions[1:] {
			if c < out {
				out = c
			}
		}
		return out
	default:
		return score
	}
}

// ScoreAnswerValue computes the per-question score for a raw answer value
// against a frozen option list. single_select scores the matching option's
// absolute score (0 if no option matches), multi_select sums the absolute
// scores of every matched selection, and free text always scores 0.
func ScoreAnswerValue(questionType string, options []models.QuestionOption, value string) float64 {
	switch questionType {
	case models.QuestionSingleSelect:
		for _, opt := range options {
			if opt.Text == value {
				return opt.AbsoluteScore
			}
		}
		return 0
	case models.QuestionMultiSelect:
		var selected []string
		if err := json.Unmarshal([]byte(value), &selected); err != nil {
			selected = []string{value}
		}
		byText := make(map[string]float64, len(options))
		for _, opt := range options {
			byText[opt.Text] = opt.AbsoluteScore
		}
		var sum float64
		for _, sel := range selected {
			sum += byText[sel]
		}
		return sum
	default:
		return 0
	}
}

type AnswerInput struct {
	SurveyQuestionID uint   `json:"survey_question_id"`
	Value            string `json:"value"`
}

type SubmitInput struct {
	SurveyID uint
	UserID   *uint
	Answers  []AnswerInput
	Submit   bool
}

// SubmitResponse records a response with its answers, scoring each answer
// against the survey's frozen question copies. Registered users get one
// response per survey; anonymous submissions are only accepted when the
// survey allows them and are identified by a generated token.
func (s *ScoreService) SubmitResponse(in SubmitInput) (*models.Response, error) {
	survey, err := s.store.SurveyByID(in.SurveyID)
	if err != nil {
		return nil, err
	}
	if !survey.IsActive {
		return nil, fmt.Errorf("survey %d: %w", in.SurveyID, ErrSurveyInactive)
	}
	if in.UserID == nil && !survey.AllowAnonymous {
		return nil, fmt.Errorf("survey %d: %w", in.SurveyID, ErrAnonymousNotAllowed)
	}
	if in.UserID != nil {
		existing, err := s.store.ResponseFor(in.SurveyID, *in.UserID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("survey %d user %d: %w", in.SurveyID, *in.UserID, ErrDuplicateResponse)
		}
	}

	frozen, err := s.store.SurveyQuestionsBySurvey(in.SurveyID)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.SurveyQuestion, len(frozen))
	for _, q := range frozen {
		byID[q.ID] = q
	}

	response := &models.Response{
		SurveyID: in.SurveyID,
		UserID:   in.UserID,
		Status:   models.ResponseDraft,
	}
	if in.Submit {
		response.Status = models.ResponseSubmitted
	}
	if in.UserID == nil {
		response.Token = uuid.NewString()
	}

	var answers []*models.Answer
	var weighted, totalWeight float64
	for _, a := range in.Answers {
		q, ok := byID[a.SurveyQuestionID]
		if !ok {
			continue
		}
		opts, err := q.ParsedOptions()
		if err != nil {
			return nil, err
		}
		score := ScoreAnswerValue(q.Type, opts, a.Value)
		answers = append(answers, &models.Answer{
			SurveyQuestionID: q.ID,
			QuestionID:       q.SourceQuestionID,
			Value:            a.Value,
			Score:            score,
		})
		weighted += score * q.Weightage
		totalWeight += q.Weightage
	}
	if totalWeight > 0 {
		response.Score = weighted / totalWeight
	}

	err = s.store.Transaction(func(tx TreeStore) error {
		if err := tx.CreateResponse(response); err != nil {
			return err
		}
		for _, a := range answers {
			a.ResponseID = response.ID
		}
		return tx.CreateAnswers(answers)
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// FinalizeResponse promotes a draft response to submitted, recomputing the
// overall score from the stored answers against the survey's frozen question
// weights. An already submitted response is returned unchanged.
func (s *ScoreService) FinalizeResponse(responseID uint) (*models.Response, error) {
	response, err := s.store.ResponseByID(responseID)
	if err != nil {
		return nil, err
	}
	if response.Status == models.ResponseSubmitted {
		return response, nil
	}

	frozen, err := s.store.SurveyQuestionsBySurvey(response.SurveyID)
	if err != nil {
		return nil, err
	}
	weightByID := make(map[uint]float64, len(frozen))
	for _, q := range frozen {
		weightByID[q.ID] = q.Weightage
	}

	answers, err := s.store.AnswersByResponse(response.ID)
	if err != nil {
		return nil, err
	}
	var weighted, totalWeight float64
	for _, a := range answers {
		w, ok := weightByID[a.SurveyQuestionID]
		if !ok {
			continue
		}
		weighted += a.Score * w
		totalWeight += w
	}
	response.Score = 0
	if totalWeight > 0 {
		response.Score = weighted / totalWeight
	}
	response.Status = models.ResponseSubmitted
	if err := s.store.SaveResponse(response); err != nil {
		return nil, err
	}
	return response, nil
}

type LeverScore struct {
	LeverID uint    `json:"lever_id"`
	Name    string  `json:"name"`
	Score   float64 `json:"score"`
}

type PillarScore struct {
	PillarID uint         `json:"pillar_id"`
	Name     string       `json:"name"`
	Score    float64      `json:"score"`
	Levers   []LeverScore `json:"levers"`
}

// PillarOverview rolls a response up to the framework level: each active
// lever's score is the weighted average of its active root variables, and
// each pillar's the weighted average of its active levers.
func (s *ScoreService) PillarOverview(responseID uint) ([]PillarScore, error) {
	if _, err := s.store.ResponseByID(responseID); err != nil {
		return nil, err
	}
	pillars, err := s.store.Pillars()
	if err != nil {
		return nil, err
	}

	var out []PillarScore
	for _, pillar := range pillars {
		if !pillar.IsActive {
			continue
		}
		ps := PillarScore{PillarID: pillar.ID, Name: pillar.Name}
		levers, err := s.store.LeversByPillar(pillar.ID)
		if err != nil {
			return nil, err
		}
		var pillarWeighted, pillarWeight float64
		for _, lever := range levers {
			if !lever.IsActive {
				continue
			}
			roots, err := s.store.RootVariables(lever.ID)
			if err != nil {
				return nil, err
			}
			var leverWeighted, leverWeight float64
			for _, root := range roots {
				if !root.IsActive {
					continue
				}
				score, err := s.ComputeScore(root.ID, responseID)
				if err != nil {
					return nil, err
				}
				leverWeighted += score * root.Weightage
				leverWeight += root.Weightage
			}
			leverScore := 0.0
			if leverWeight > 0 {
				leverScore = leverWeighted / leverWeight
			}
			ps.Levers = append(ps.Levers, LeverScore{LeverID: lever.ID, Name: lever.Name, Score: leverScore})
			pillarWeighted += leverScore * lever.Weightage
			pillarWeight += lever.Weightage
		}
		if pillarWeight > 0 {
			ps.Score = pillarWeighted / pillarWeight
		}
		out = append(out, ps)
	}
	return out, nil
}
