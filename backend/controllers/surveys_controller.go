package controllers

import (
	"errors"
	"strconv"

	"esgframe/backend/config"
	"esgframe/backend/models"
	"esgframe/backend/services"
	"esgframe/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SurveysController struct {
	DB        *gorm.DB
	Cfg       *config.Config
	Assembler *services.AssemblerService
}

func NewSurveysController(db *gorm.DB, cfg *config.Config) *SurveysController {
	return &SurveysController{
		DB:        db,
		Cfg:       cfg,
		Assembler: services.NewAssemblerService(services.NewGormTreeStore(db)),
	}
}

// CreateSurvey builds a survey from a selection over the framework and
// freezes the resolved questions into it in one step.
func (sc *SurveysController) CreateSurvey(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Title          string             `json:"title"`
		Description    string             `json:"description"`
		AllowAnonymous bool               `json:"allow_anonymous"`
		Selection      services.Selection `json:"selection"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}

	survey := models.Survey{
		Title:          input.Title,
		Description:    input.Description,
		AuthorID:       userID,
		AllowAnonymous: input.AllowAnonymous,
		IsActive:       true,
	}
	if err := sc.DB.Create(&survey).Error; err != nil {
		return utils.InternalServerError(c, "Could not create survey")
	}

	frozen, err := sc.Assembler.FreezeSurvey(survey.ID, input.Selection)
	if err != nil {
		// An unusable selection must not leave an empty survey behind.
		sc.DB.Unscoped().Delete(&survey)
		return utils.ServiceError(c, err)
	}

	return utils.Created(c, fiber.Map{
		"survey":    survey,
		"questions": frozen,
	})
}

// RefreezeSurvey replaces the survey's frozen question set from a new
// selection. Existing responses keep their answers; only the question list
// changes.
func (sc *SurveysController) RefreezeSurvey(c *fiber.Ctx) error {
	surveyID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid survey ID")
	}

	var input struct {
		Selection services.Selection `json:"selection"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	frozen, err := sc.Assembler.FreezeSurvey(uint(surveyID), input.Selection)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"questions": frozen,
	})
}

func (sc *SurveysController) GetSurvey(c *fiber.Ctx) error {
	surveyID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid survey ID")
	}

	var survey models.Survey
	if err := sc.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order")
	}).First(&survey, surveyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Survey not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, survey)
}

func (sc *SurveysController) GetSurveys(c *fiber.Ctx) error {
	query := sc.DB.Model(&models.Survey{})
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var surveys []models.Survey
	if err := query.Order("created_at DESC").Find(&surveys).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	var result []fiber.Map
	for _, survey := range surveys {
		var questionCount, responseCount int64
		sc.DB.Model(&models.SurveyQuestion{}).Where("survey_id = ?", survey.ID).Count(&questionCount)
		sc.DB.Model(&models.Response{}).Where("survey_id = ?", survey.ID).Count(&responseCount)

		result = append(result, fiber.Map{
			"id":              survey.ID,
			"title":           survey.Title,
			"description":     survey.Description,
			"is_active":       survey.IsActive,
			"allow_anonymous": survey.AllowAnonymous,
			"questions":       questionCount,
			"responses":       responseCount,
			"created_at":      survey.CreatedAt,
		})
	}

	return utils.Success(c, fiber.StatusOK, result)
}

func (sc *SurveysController) ToggleSurvey(c *fiber.Ctx) error {
	surveyID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid survey ID")
	}

	var input struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var survey models.Survey
	if err := sc.DB.First(&survey, surveyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Survey not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	survey.IsActive = input.IsActive
	if err := sc.DB.Save(&survey).Error; err != nil {
		return utils.InternalServerError(c, "Could not update survey")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":        survey.ID,
		"is_active": survey.IsActive,
	})
}
