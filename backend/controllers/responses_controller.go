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

type ResponsesController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Scorer *services.ScoreService
}

func NewResponsesController(db *gorm.DB, cfg *config.Config) *ResponsesController {
	return &ResponsesController{
		DB:     db,
		Cfg:    cfg,
		Scorer: services.NewScoreService(services.NewGormTreeStore(db)),
	}
}

// SubmitResponse records answers against a survey. A valid token is not
// required: anonymous submissions are accepted when the survey allows
// them, and the returned access token is the respondent's only handle on
// the response afterward.
func (rc *ResponsesController) SubmitResponse(c *fiber.Ctx) error {
	surveyID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid survey ID")
	}

	var input struct {
		Answers []services.AnswerInput `json:"answers"`
		Submit  bool                   `json:"submit"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var userID *uint
	if id, err := utils.ExtractUserIDFromToken(c, rc.Cfg); err == nil {
		userID = &id
	}

	response, err := rc.Scorer.SubmitResponse(services.SubmitInput{
		SurveyID: uint(surveyID),
		UserID:   userID,
		Answers:  input.Answers,
		Submit:   input.Submit,
	})
	if err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Created(c, response)
}

// GetResponseScore returns the aggregated score of one variable subtree
// for a response, or the stored overall score when no variable is given.
func (rc *ResponsesController) GetResponseScore(c *fiber.Ctx) error {
	responseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid response ID")
	}

	var response models.Response
	if err := rc.DB.First(&response, responseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Response not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	variableParam := c.Query("variable")
	if variableParam == "" {
		return utils.Success(c, fiber.StatusOK, fiber.Map{
			"response_id": response.ID,
			"score":       response.Score,
		})
	}

	variableID, err := strconv.Atoi(variableParam)
	if err != nil {
		return utils.BadRequest(c, "Invalid variable ID")
	}

	score, err := rc.Scorer.ComputeScore(uint(variableID), response.ID)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"response_id": response.ID,
		"variable_id": variableID,
		"score":       score,
	})
}

// GetResponseOverview rolls the response up to lever and pillar level.
func (rc *ResponsesController) GetResponseOverview(c *fiber.Ctx) error {
	responseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid response ID")
	}

	overview, err := rc.Scorer.PillarOverview(uint(responseID))
	if err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, overview)
}

func (rc *ResponsesController) GetResponse(c *fiber.Ctx) error {
	responseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid response ID")
	}

	var response models.Response
	if err := rc.DB.Preload("Answers").First(&response, responseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Response not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := rc.authorizeResponse(c, &response); err != nil {
		return err
	}

	return utils.Success(c, fiber.StatusOK, response)
}

// FinalizeResponse submits a draft response, recomputing its overall score
// from the answers already stored.
func (rc *ResponsesController) FinalizeResponse(c *fiber.Ctx) error {
	responseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid response ID")
	}

	var response models.Response
	if err := rc.DB.First(&response, responseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Response not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	if err := rc.authorizeResponse(c, &response); err != nil {
		return err
	}

	result, err := rc.Scorer.FinalizeResponse(uint(responseID))
	if err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, result)
}

// authorizeResponse enforces who may touch a response: anonymous responses
// need their access token, owned responses their owner's JWT or an admin.
func (rc *ResponsesController) authorizeResponse(c *fiber.Ctx, response *models.Response) error {
	if response.UserID == nil {
		if c.Query("token") != response.Token {
			return utils.Forbidden(c, "Invalid access token")
		}
		return nil
	}
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	if *response.UserID != userID && !rc.isAdmin(userID) {
		return utils.Forbidden(c, "You don't have permission to view this response")
	}
	return nil
}

func (rc *ResponsesController) GetSurveyResponses(c *fiber.Ctx) error {
	surveyID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid survey ID")
	}

	var responses []models.Response
	if err := rc.DB.Where("survey_id = ?", surveyID).Order("created_at DESC").Find(&responses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	var result []fiber.Map
	for _, response := range responses {
		var answerCount int64
		rc.DB.Model(&models.Answer{}).Where("response_id = ?", response.ID).Count(&answerCount)

		result = append(result, fiber.Map{
			"id":         response.ID,
			"user_id":    response.UserID,
			"status":     response.Status,
			"score":      response.Score,
			"answers":    answerCount,
			"created_at": response.CreatedAt,
		})
	}

	return utils.Success(c, fiber.StatusOK, result)
}

func (rc *ResponsesController) isAdmin(userID uint) bool {
	var user models.User
	if err := rc.DB.First(&user, userID).Error; err != nil {
		return false
	}
	return user.IsAdmin
}
