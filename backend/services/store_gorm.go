package services

import (
	"errors"
	"fmt"

	"esgframe/backend/models"

	"gorm.io/gorm"
)

// GormTreeStore backs TreeStore with GORM/Postgres.
type GormTreeStore struct {
	db *gorm.DB
}

func NewGormTreeStore(db *gorm.DB) *GormTreeStore {
	return &GormTreeStore{db: db}
}

func (s *GormTreeStore) VariableByID(id uint) (*models.Variable, error) {
	var v models.Variable
	if err := s.db.First(&v, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("variable %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &v, nil
}

func (s *GormTreeStore) Children(parentID uint) ([]models.Variable, error) {
	var children []models.Variable
	err := s.db.Where("parent_id = ?", parentID).Order("sort_order, id").Find(&children).Error
	return children, err
}

func (s *GormTreeStore) RootVariables(leverID uint) ([]models.Variable, error) {
	var roots []models.Variable
	err := s.db.Where("lever_id = ?", leverID).Order("sort_order, id").Find(&roots).Error
	return roots, err
}

func (s *GormTreeStore) CreateVariable(v *models.Variable) error {
	if v.Version == 0 {
		v.Version = 1
	}
	return s.db.Create(v).Error
}

// SaveVariable persists a loaded variable and bumps its version. The update
// is guarded on the version the caller loaded, so a concurrent structural
// edit surfaces as ErrStaleVersion instead of a silent lost write.
func (s *GormTreeStore) SaveVariable(v *models.Variable) error {
	loaded := v.Version
	res := s.db.Model(&models.Variable{}).
		Where("id = ? AND version = ?", v.ID, loaded).
		Updates(map[string]interface{}{
			"name":             v.Name,
			"description":      v.Description,
			"weightage":        v.Weightage,
			"lever_id":         v.LeverID,
			"parent_id":        v.ParentID,
			"level":            v.Level,
			"path":             v.Path,
			"aggregation_type": v.AggregationType,
			"sort_order":       v.SortOrder,
			"is_active":        v.IsActive,
			"version":          loaded + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("variable %d: %w", v.ID, ErrStaleVersion)
	}
	v.Version = loaded + 1
	return nil
}

func (s *GormTreeStore) DeleteVariable(id uint) error {
	return s.db.Unscoped().Delete(&models.Variable{}, id).Error
}

func (s *GormTreeStore) QuestionByID(id uint) (*models.VariableQuestion, error) {
	var q models.VariableQuestion
	if err := s.db.First(&q, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("question %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &q, nil
}

func (s *GormTreeStore) QuestionsByVariable(variableID uint) ([]models.VariableQuestion, error) {
	var qs []models.VariableQuestion
	err := s.db.Where("variable_id = ?", variableID).Order("sort_order, id").Find(&qs).Error
	return qs, err
}

func (s *GormTreeStore) QuestionsByIDs(ids []uint) ([]models.VariableQuestion, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var qs []models.VariableQuestion
	err := s.db.Where("id IN ?", ids).Find(&qs).Error
	return qs, err
}

func (s *GormTreeStore) CreateQuestion(q *models.VariableQuestion) error {
	return s.db.Create(q).Error
}

func (s *GormTreeStore) CreateQuestions(qs []*models.VariableQuestion) error {
	if len(qs) == 0 {
		return nil
	}
	return s.db.Create(qs).Error
}

func (s *GormTreeStore) SaveQuestion(q *models.VariableQuestion) error {
	return s.db.Save(q).Error
}

func (s *GormTreeStore) DeleteQuestion(id uint) error {
	return s.db.Unscoped().Delete(&models.VariableQuestion{}, id).Error
}

func (s *GormTreeStore) DeleteQuestionsByVariable(variableID uint) error {
	return s.db.Unscoped().Where("variable_id = ?", variableID).Delete(&models.VariableQuestion{}).Error
}

func (s *GormTreeStore) PillarByID(id uint) (*models.Pillar, error) {
	var p models.Pillar
	if err := s.db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("pillar %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

func (s *GormTreeStore) Pillars() ([]models.Pillar, error) {
	var ps []models.Pillar
	err := s.db.Order("id").Find(&ps).Error
	return ps, err
}

func (s *GormTreeStore) SavePillar(p *models.Pillar) error {
	return s.db.Save(p).Error
}

func (s *GormTreeStore) LeverByID(id uint) (*models.Lever, error) {
	var l models.Lever
	if err := s.db.First(&l, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lever %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &l, nil
}

func (s *GormTreeStore) LeversByPillar(pillarID uint) ([]models.Lever, error) {
	var ls []models.Lever
	err := s.db.Where("pillar_id = ?", pillarID).Order("id").Find(&ls).Error
	return ls, err
}

func (s *GormTreeStore) SaveLever(l *models.Lever) error {
	return s.db.Save(l).Error
}

func (s *GormTreeStore) SurveyByID(id uint) (*models.Survey, error) {
	var sv models.Survey
	if err := s.db.First(&sv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("survey %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &sv, nil
}

func (s *GormTreeStore) SurveyQuestionsBySurvey(surveyID uint) ([]models.SurveyQuestion, error) {
	var qs []models.SurveyQuestion
	err := s.db.Where("survey_id = ?", surveyID).Order("sort_order, id").Find(&qs).Error
	return qs, err
}

func (s *GormTreeStore) CreateSurveyQuestions(qs []*models.SurveyQuestion) error {
	if len(qs) == 0 {
		return nil
	}
	return s.db.Create(qs).Error
}

func (s *GormTreeStore) DeleteSurveyQuestionsBySurvey(surveyID uint) error {
	return s.db.Unscoped().Where("survey_id = ?", surveyID).Delete(&models.SurveyQuestion{}).Error
}

func (s *GormTreeStore) ResponseByID(id uint) (*models.Response, error) {
	var r models.Response
	if err := s.db.First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("response %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &r, nil
}

func (s *GormTreeStore) ResponseFor(surveyID, userID uint) (*models.Response, error) {
	var r models.Response
	err := s.db.Where("survey_id = ? AND user_id = ?", surveyID, userID).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *GormTreeStore) CreateResponse(r *models.Response) error {
	return s.db.Create(r).Error
}

func (s *GormTreeStore) SaveResponse(r *models.Response) error {
	return s.db.Save(r).Error
}

func (s *GormTreeStore) CreateAnswers(answers []*models.Answer) error {
	if len(answers) == 0 {
		return nil
	}
	return s.db.Create(answers).Error
}

func (s *GormTreeStore) AnswerFor(responseID, questionID uint) (*models.Answer, error) {
	var a models.Answer
	err := s.db.Where("response_id = ? AND question_id = ?", responseID, questionID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *GormTreeStore) AnswersByResponse(responseID uint) ([]models.Answer, error) {
	var as []models.Answer
	err := s.db.Where("response_id = ?", responseID).Find(&as).Error
	return as, err
}

func (s *GormTreeStore) CountAnswersForQuestions(questionIDs []uint) (int64, error) {
	if len(questionIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := s.db.Model(&models.Answer{}).Where("question_id IN ?", questionIDs).Count(&n).Error
	return n, err
}

func (s *GormTreeStore) DeleteAnswersForQuestions(questionIDs []uint) error {
	if len(questionIDs) == 0 {
		return nil
	}
	return s.db.Unscoped().Where("question_id IN ?", questionIDs).Delete(&models.Answer{}).Error
}

func (s *GormTreeStore) Transaction(fn func(TreeStore) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormTreeStore{db: tx})
	})
}
