package services

import "esgframe/backend/models"

// TreeStore is the persistence boundary of the tree core. The services
// only ever touch storage through it, which keeps the hierarchy, scoring
// and assembly logic testable against an in-memory implementation.
//
// Lookup conventions: *ByID methods wrap ErrNotFound for missing rows;
// AnswerFor and ResponseFor return (nil, nil) when no row exists, since a
// missing answer is an expected case for the aggregator, not a failure.
type TreeStore interface {
	VariableByID(id uint) (*models.Variable, error)
	Children(parentID uint) ([]models.Variable, error)
	RootVariables(leverID uint) ([]models.Variable, error)
	CreateVariable(v *models.Variable) error
	SaveVariable(v *models.Variable) error
	DeleteVariable(id uint) error

	QuestionByID(id uint) (*models.VariableQuestion, error)
	QuestionsByVariable(variableID uint) ([]models.VariableQuestion, error)
	QuestionsByIDs(ids []uint) ([]models.VariableQuestion, error)
	CreateQuestion(q *models.VariableQuestion) error
	CreateQuestions(qs []*models.VariableQuestion) error
	SaveQuestion(q *models.VariableQuestion) error
	DeleteQuestion(id uint) error
	DeleteQuestionsByVariable(variableID uint) error

	PillarByID(id uint) (*models.Pillar, error)
	Pillars() ([]models.Pillar, error)
	SavePillar(p *models.Pillar) error
	LeverByID(id uint) (*models.Lever, error)
	LeversByPillar(pillarID uint) ([]models.Lever, error)
	SaveLever(l *models.Lever) error

	SurveyByID(id uint) (*models.Survey, error)
	SurveyQuestionsBySurvey(surveyID uint) ([]models.SurveyQuestion, error)
	CreateSurveyQuestions(qs []*models.SurveyQuestion) error
	DeleteSurveyQuestionsBySurvey(surveyID uint) error

	ResponseByID(id uint) (*models.Response, error)
	ResponseFor(surveyID, userID uint) (*models.Response, error)
	CreateResponse(r *models.Response) error
	SaveResponse(r *models.Response) error
	CreateAnswers(answers []*models.Answer) error
	AnswerFor(responseID, questionID uint) (*models.Answer, error)
	AnswersByResponse(responseID uint) ([]models.Answer, error)
	CountAnswersForQuestions(questionIDs []uint) (int64, error)
	DeleteAnswersForQuestions(questionIDs []uint) error

	// Transaction runs fn against a store whose writes commit atomically.
	// Multi-node mutations (move, clone, force delete, path repair) always
	// run inside one.
	Transaction(fn func(TreeStore) error) error
}
