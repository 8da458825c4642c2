package controllers

import (
	"strconv"

	"esgframe/backend/config"
	"esgframe/backend/models"
	"esgframe/backend/services"
	"esgframe/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type OverviewController struct {
	DB        *gorm.DB
	Cfg       *config.Config
	Hierarchy *services.HierarchyService
}

func NewOverviewController(db *gorm.DB, cfg *config.Config) *OverviewController {
	return &OverviewController{
		DB:        db,
		Cfg:       cfg,
		Hierarchy: services.NewHierarchyService(services.NewGormTreeStore(db)),
	}
}

// SearchVariables finds variables by name/description/path across the
// whole framework.
func (oc *OverviewController) SearchVariables(c *fiber.Ctx) error {
	search := c.Query("search")
	leverParam := c.Query("lever")
	sort := c.Query("sort", "path") // path, newest, weight

	query := oc.DB.Model(&models.Variable{})
	if c.Query("include_inactive") != "true" {
		query = query.Where("is_active = ?", true)
	}

	if search != "" {
		query = query.Where("name ILIKE ? OR description ILIKE ? OR path ILIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	if leverParam != "" {
		leverID, err := strconv.Atoi(leverParam)
		if err != nil {
			return utils.BadRequest(c, "Invalid lever ID")
		}
		// Scope to the exact forest under the lever. Path prefixes alone
		// cannot do this: sibling roots like "En" and "Energy" collide.
		forest, err := oc.Hierarchy.Tree(uint(leverID))
		if err != nil {
			return utils.ServiceError(c, err)
		}
		query = query.Where("id IN ?", collectTreeIDs(forest))
	}

	switch sort {
	case "newest":
		query = query.Order("created_at DESC")
	case "weight":
		query = query.Order("weightage DESC")
	default:
		query = query.Order("path")
	}

	var variables []models.Variable
	if err := query.Find(&variables).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch variables")
	}

	var result []fiber.Map
	for _, variable := range variables {
		var questionCount int64
		oc.DB.Model(&models.VariableQuestion{}).
			Where("variable_id = ?", variable.ID).
			Count(&questionCount)

		result = append(result, fiber.Map{
			"id":               variable.ID,
			"name":             variable.Name,
			"description":      variable.Description,
			"path":             variable.Path,
			"level":            variable.Level,
			"weightage":        variable.Weightage,
			"aggregation_type": variable.AggregationType,
			"is_active":        variable.IsActive,
			"questions":        questionCount,
		})
	}

	return utils.Success(c, fiber.StatusOK, result)
}

// collectTreeIDs flattens a lever forest into the ids of every variable in
// it, at any depth.
func collectTreeIDs(forest []*services.TreeNode) []uint {
	var ids []uint
	stack := append([]*services.TreeNode{}, forest...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		ids = append(ids, n.Variable.ID)
		stack = append(stack, n.Children...)
	}
	return ids
}

// SearchSurveys finds surveys by title/description with response counts.
func (oc *OverviewController) SearchSurveys(c *fiber.Ctx) error {
	search := c.Query("search")
	sort := c.Query("sort", "popularity") // popularity, newest

	query := oc.DB.Model(&models.Survey{}).Where("is_active = ?", true)

	if search != "" {
		query = query.Where("title ILIKE ? OR description ILIKE ?",
			"%"+search+"%", "%"+search+"%")
	}

	switch sort {
	case "newest":
		query = query.Order("created_at DESC")
	default: // popularity
		query = query.Order("(SELECT COUNT(*) FROM responses WHERE survey_id = surveys.id) DESC")
	}

	var surveys []models.Survey
	if err := query.Find(&surveys).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch surveys")
	}

	var result []fiber.Map
	for _, survey := range surveys {
		var questionCount, responseCount int64
		oc.DB.Model(&models.SurveyQuestion{}).Where("survey_id = ?", survey.ID).Count(&questionCount)
		oc.DB.Model(&models.Response{}).Where("survey_id = ?", survey.ID).Count(&responseCount)

		result = append(result, fiber.Map{
			"id":              survey.ID,
			"title":           survey.Title,
			"description":     survey.Description,
			"allow_anonymous": survey.AllowAnonymous,
			"questions":       questionCount,
			"responses":       responseCount,
			"created_at":      survey.CreatedAt,
		})
	}

	return utils.Success(c, fiber.StatusOK, result)
}
