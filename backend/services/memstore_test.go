package services

import (
	"fmt"
	"sort"

	"esgframe/backend/models"
)

// memStore is an in-memory TreeStore used by the service tests. It returns
// copies so callers only observe their own mutations after an explicit
// save, and it enforces the same version guard as the GORM store.
type memStore struct {
	nextID          uint
	variables       map[uint]*models.Variable
	questions       map[uint]*models.VariableQuestion
	pillars         map[uint]*models.Pillar
	levers          map[uint]*models.Lever
	surveys         map[uint]*models.Survey
	surveyQuestions map[uint]*models.SurveyQuestion
	responses       map[uint]*models.Response
	answers         map[uint]*models.Answer
}

func newMemStore() *memStore {
	return &memStore{
		variables:       make(map[uint]*models.Variable),
		questions:       make(map[uint]*models.VariableQuestion),
		pillars:         make(map[uint]*models.Pillar),
		levers:          make(map[uint]*models.Lever),
		surveys:         make(map[uint]*models.Survey),
		surveyQuestions: make(map[uint]*models.SurveyQuestion),
		responses:       make(map[uint]*models.Response),
		answers:         make(map[uint]*models.Answer),
	}
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memStore) VariableByID(id uint) (*models.Variable, error) {
	v, ok := m.variables[id]
	if !ok {
		return nil, fmt.Errorf("variable %d: %w", id, ErrNotFound)
	}
	cp := *v
	return &cp, nil
}

func (m *memStore) Children(parentID uint) ([]models.Variable, error) {
	var out []models.Variable
	for _, v := range m.variables {
		if v.ParentID != nil && *v.ParentID == parentID {
			out = append(out, *v)
		}
	}
	sortVariables(out)
	return out, nil
}

func (m *memStore) RootVariables(leverID uint) ([]models.Variable, error) {
	var out []models.Variable
	for _, v := range m.variables {
		if v.LeverID != nil && *v.LeverID == leverID {
			out = append(out, *v)
		}
	}
	sortVariables(out)
	return out, nil
}

func sortVariables(vs []models.Variable) {
	sort.Slice(vs, func(i, j int) bool {
		if vs[i].SortOrder != vs[j].SortOrder {
			return vs[i].SortOrder < vs[j].SortOrder
		}
		return vs[i].ID < vs[j].ID
	})
}

func (m *memStore) CreateVariable(v *models.Variable) error {
	v.ID = m.id()
	if v.Version == 0 {
		v.Version = 1
	}
	cp := *v
	m.variables[v.ID] = &cp
	return nil
}

func (m *memStore) SaveVariable(v *models.Variable) error {
	stored, ok := m.variables[v.ID]
	if !ok {
		return fmt.Errorf("variable %d: %w", v.ID, ErrNotFound)
	}
	if stored.Version != v.Version {
		return fmt.Errorf("variable %d: %w", v.ID, ErrStaleVersion)
	}
	v.Version++
	cp := *v
	m.variables[v.ID] = &cp
	return nil
}

func (m *memStore) DeleteVariable(id uint) error {
	delete(m.variables, id)
	return nil
}

func (m *memStore) QuestionByID(id uint) (*models.VariableQuestion, error) {
	q, ok := m.questions[id]
	if !ok {
		return nil, fmt.Errorf("question %d: %w", id, ErrNotFound)
	}
	cp := *q
	return &cp, nil
}

func (m *memStore) QuestionsByVariable(variableID uint) ([]models.VariableQuestion, error) {
	var out []models.VariableQuestion
	for _, q := range m.questions {
		if q.VariableID == variableID {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memStore) QuestionsByIDs(ids []uint) ([]models.VariableQuestion, error) {
	var out []models.VariableQuestion
	for _, id := range ids {
		if q, ok := m.questions[id]; ok {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (m *memStore) CreateQuestion(q *models.VariableQuestion) error {
	q.ID = m.id()
	cp := *q
	m.questions[q.ID] = &cp
	return nil
}

func (m *memStore) CreateQuestions(qs []*models.VariableQuestion) error {
	for _, q := range qs {
		if err := m.CreateQuestion(q); err != nil {
			return err
		}
	}
	return nil
}

func (m *memStore) SaveQuestion(q *models.VariableQuestion) error {
	if _, ok := m.questions[q.ID]; !ok {
		return fmt.Errorf("question %d: %w", q.ID, ErrNotFound)
	}
	cp := *q
	m.questions[q.ID] = &cp
	return nil
}

func (m *memStore) DeleteQuestion(id uint) error {
	delete(m.questions, id)
	return nil
}

func (m *memStore) DeleteQuestionsByVariable(variableID uint) error {
	for id, q := range m.questions {
		if q.VariableID == variableID {
			delete(m.questions, id)
		}
	}
	return nil
}

func (m *memStore) PillarByID(id uint) (*models.Pillar, error) {
	p, ok := m.pillars[id]
	if !ok {
		return nil, fmt.Errorf("pillar %d: %w", id, ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) Pillars() ([]models.Pillar, error) {
	var out []models.Pillar
	for _, p := range m.pillars {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) SavePillar(p *models.Pillar) error {
	if p.ID == 0 {
		p.ID = m.id()
	}
	cp := *p
	m.pillars[p.ID] = &cp
	return nil
}

func (m *memStore) LeverByID(id uint) (*models.Lever, error) {
	l, ok := m.levers[id]
	if !ok {
		return nil, fmt.Errorf("lever %d: %w", id, ErrNotFound)
	}
	cp := *l
	return &cp, nil
}

func (m *memStore) LeversByPillar(pillarID uint) ([]models.Lever, error) {
	var out []models.Lever
	for _, l := range m.levers {
		if l.PillarID == pillarID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) SaveLever(l *models.Lever) error {
	if l.ID == 0 {
		l.ID = m.id()
	}
	cp := *l
	m.levers[l.ID] = &cp
	return nil
}

func (m *memStore) SurveyByID(id uint) (*models.Survey, error) {
	s, ok := m.surveys[id]
	if !ok {
		return nil, fmt.Errorf("survey %d: %w", id, ErrNotFound)
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) SurveyQuestionsBySurvey(surveyID uint) ([]models.SurveyQuestion, error) {
	var out []models.SurveyQuestion
	for _, q := range m.surveyQuestions {
		if q.SurveyID == surveyID {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memStore) CreateSurveyQuestions(qs []*models.SurveyQuestion) error {
	for _, q := range qs {
		q.ID = m.id()
		cp := *q
		m.surveyQuestions[q.ID] = &cp
	}
	return nil
}

func (m *memStore) DeleteSurveyQuestionsBySurvey(surveyID uint) error {
	for id, q := range m.surveyQuestions {
		if q.SurveyID == surveyID {
			delete(m.surveyQuestions, id)
		}
	}
	return nil
}

func (m *memStore) ResponseByID(id uint) (*models.Response, error) {
	r, ok := m.responses[id]
	if !ok {
		return nil, fmt.Errorf("response %d: %w", id, ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) ResponseFor(surveyID, userID uint) (*models.Response, error) {
	for _, r := range m.responses {
		if r.SurveyID == surveyID && r.UserID != nil && *r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateResponse(r *models.Response) error {
	r.ID = m.id()
	cp := *r
	m.responses[r.ID] = &cp
	return nil
}

func (m *memStore) SaveResponse(r *models.Response) error {
	cp := *r
	m.responses[r.ID] = &cp
	return nil
}

func (m *memStore) CreateAnswers(answers []*models.Answer) error {
	for _, a := range answers {
		a.ID = m.id()
		cp := *a
		m.answers[a.ID] = &cp
	}
	return nil
}

func (m *memStore) AnswerFor(responseID, questionID uint) (*models.Answer, error) {
	for _, a := range m.answers {
		if a.ResponseID == responseID && a.QuestionID == questionID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) AnswersByResponse(responseID uint) ([]models.Answer, error) {
	var out []models.Answer
	for _, a := range m.answers {
		if a.ResponseID == responseID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memStore) CountAnswersForQuestions(questionIDs []uint) (int64, error) {
	set := make(map[uint]struct{}, len(questionIDs))
	for _, id := range questionIDs {
		set[id] = struct{}{}
	}
	var n int64
	for _, a := range m.answers {
		if _, ok := set[a.QuestionID]; ok {
			n++
		}
	}
	return n, nil
}

func (m *memStore) DeleteAnswersForQuestions(questionIDs []uint) error {
	set := make(map[uint]struct{}, len(questionIDs))
	for _, id := range questionIDs {
		set[id] = struct{}{}
	}
	for id, a := range m.answers {
		if _, ok := set[a.QuestionID]; ok {
			delete(m.answers, id)
		}
	}
	return nil
}

func (m *memStore) Transaction(fn func(TreeStore) error) error {
	return fn(m)
}
