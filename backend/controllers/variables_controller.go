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

type VariablesController struct {
	DB        *gorm.DB
	Cfg       *config.Config
	Hierarchy *services.HierarchyService
	Assembler *services.AssemblerService
}

func NewVariablesController(db *gorm.DB, cfg *config.Config) *VariablesController {
	store := services.NewGormTreeStore(db)
	return &VariablesController{
		DB:        db,
		Cfg:       cfg,
		Hierarchy: services.NewHierarchyService(store),
		Assembler: services.NewAssemblerService(store),
	}
}

func (vc *VariablesController) GetLeverTree(c *fiber.Ctx) error {
	leverID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid lever ID")
	}

	tree, err := vc.Hierarchy.Tree(uint(leverID))
	if err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, tree)
}

func (vc *VariablesController) GetVariableStats(c *fiber.Ctx) error {
	variableID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid variable ID")
	}

	stats, err := vc.Hierarchy.Stats(uint(variableID))
	if err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, stats)
}

func (vc *VariablesController) CreateVariable(c *fiber.Ctx) error {
	var input struct {
		Name            string   `json:"name"`
		Description     string   `json:"description"`
		Weightage       *float64 `json:"weightage"`
		ParentID        *uint    `json:"parent_id"`
		LeverID         *uint    `json:"lever_id"`
		AggregationType string   `json:"aggregation_type"`
		SortOrder       int      `json:"sort_order"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Name == "" {
		return utils.BadRequest(c, "Name is required")
	}

	variable, err := vc.Hierarchy.CreateVariable(services.CreateVariableInput{
		Name:            input.Name,
		Description:     input.Description,
		Weightage:       input.Weightage,
		ParentID:        input.ParentID,
		LeverID:         input.LeverID,
		AggregationType: models.AggregationType(input.AggregationType),
		SortOrder:       input.SortOrder,
	})
	if err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Created(c, variable)
}

func (vc *VariablesController) UpdateVariable(c *fiber.Ctx) error {
	variableID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid variable ID")
	}

	var input struct {
		Name            *string  `json:"name"`
		Description     *string  `json:"description"`
		Weightage       *float64 `json:"weightage"`
		AggregationType *string  `json:"aggregation_type"`
		SortOrder       *int     `json:"sort_order"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var agg *models.AggregationType
	if input.AggregationType != nil {
		a := models.AggregationType(*input.AggregationType)
		agg = &a
	}

	variable, err := vc.Hierarchy.UpdateVariable(uint(variableID), services.UpdateVariableInput{
		Name:            input.Name,
		Description:     input.Description,
		Weightage:       input.Weightage,
		AggregationType: agg,
		SortOrder:       input.SortOrder,
	})
	if err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, variable)
}

func (vc *VariablesController) CanMoveVariable(c *fiber.Ctx) error {
	variableID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid variable ID")
	}
	parentID, err := strconv.Atoi(c.Query("parent_id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid parent ID")
	}

	ok, err := vc.Hierarchy.CanMoveVariable(uint(variableID), uint(parentID))
	if err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"can_move": ok})
}

func (vc *VariablesController) MoveVariable(c *fiber.Ctx) error {
	variableID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid variable ID")
	}

	var input struct {
		ParentID *uint `json:"parent_id"`
		LeverID  *uint `json:"lever_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	variable, err := vc.Hierarchy.MoveVariable(uint(variableID), input.ParentID, input.LeverID)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, variable)
}

func (vc *VariablesController) CloneVariable(c *fiber.Ctx) error {
	variableID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid variable ID")
	}

	var input struct {
		TargetLeverID  *uint `json:"target_lever_id"`
		TargetParentID *uint `json:"target_parent_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	clone, err := vc.Hierarchy.CloneVariableTree(services.CloneInput{
		SourceID:       uint(variableID),
		TargetLeverID:  input.TargetLeverID,
		TargetParentID: input.TargetParentID,
	})
	if err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Created(c, clone)
}

// DeleteVariable handles both phases: without ?force=true a non-empty
// variable is deactivated and 409 carries the destruction preview; with
// force the subtree content is removed for good.
func (vc *VariablesController) DeleteVariable(c *fiber.Ctx) error {
	variableID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid variable ID")
	}
	force := c.Query("force") == "true"

	preview, err := vc.Hierarchy.DeleteVariable(uint(variableID), force)
	if err != nil {
		if errors.Is(err, services.ErrDestructiveOperationPending) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Variable deactivated. Repeat with force=true to delete its questions and recorded answers.",
				"preview": preview,
			})
		}
		return utils.ServiceError(c, err)
	}

	if preview != nil {
		return utils.Success(c, fiber.StatusOK, fiber.Map{
			"message": "Variable deleted",
			"preview": preview,
		})
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message": "Variable deleted",
	})
}

func (vc *VariablesController) ToggleVariable(c *fiber.Ctx) error {
	variableID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid variable ID")
	}

	var input struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if err := vc.Hierarchy.SetVariableActive(uint(variableID), input.IsActive); err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":        variableID,
		"is_active": input.IsActive,
	})
}

// ImportQuestions bulk-creates questions under a variable from
// already-parsed spreadsheet rows.
func (vc *VariablesController) ImportQuestions(c *fiber.Ctx) error {
	variableID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid variable ID")
	}

	var input struct {
		Questions []services.QuestionRecord `json:"questions"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if len(input.Questions) == 0 {
		return utils.BadRequest(c, "No questions to import")
	}

	created, err := vc.Assembler.ImportQuestions(uint(variableID), input.Questions)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Created(c, fiber.Map{
		"imported":  len(created),
		"questions": created,
	})
}

// UpdateQuestion edits a single question of a variable.
func (vc *VariablesController) UpdateQuestion(c *fiber.Ctx) error {
	variableID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid variable ID")
	}
	questionID, err := strconv.Atoi(c.Params("questionId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid question ID")
	}

	var input services.QuestionRecord
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	question, err := vc.Assembler.UpdateQuestion(uint(variableID), uint(questionID), input)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, question)
}

// DeleteQuestion removes a single question and its recorded answers.
func (vc *VariablesController) DeleteQuestion(c *fiber.Ctx) error {
	variableID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid variable ID")
	}
	questionID, err := strconv.Atoi(c.Params("questionId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid question ID")
	}

	if err := vc.Assembler.DeleteQuestion(uint(variableID), uint(questionID)); err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Question deleted"})
}
