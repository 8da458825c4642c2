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

type FrameworkController struct {
	DB        *gorm.DB
	Cfg       *config.Config
	Hierarchy *services.HierarchyService
}

func NewFrameworkController(db *gorm.DB, cfg *config.Config) *FrameworkController {
	return &FrameworkController{
		DB:        db,
		Cfg:       cfg,
		Hierarchy: services.NewHierarchyService(services.NewGormTreeStore(db)),
	}
}

func (fc *FrameworkController) GetPillars(c *fiber.Ctx) error {
	var pillars []models.Pillar
	query := fc.DB.Preload("Levers").Order("id")
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&pillars).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, pillars)
}

func (fc *FrameworkController) CreatePillar(c *fiber.Ctx) error {
	var input struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Weightage   float64 `json:"weightage"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Name == "" {
		return utils.BadRequest(c, "Name is required")
	}
	if input.Weightage == 0 {
		input.Weightage = 1
	}

	pillar := models.Pillar{
		Name:        input.Name,
		Description: input.Description,
		Weightage:   input.Weightage,
		IsActive:    true,
	}
	if err := fc.DB.Create(&pillar).Error; err != nil {
		return utils.Error(c, fiber.StatusConflict, errors.New("pillar name already exists"))
	}

	return utils.Created(c, pillar)
}

func (fc *FrameworkController) UpdatePillar(c *fiber.Ctx) error {
	pillarID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid pillar ID")
	}

	var input struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Weightage   *float64 `json:"weightage"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var pillar models.Pillar
	if err := fc.DB.First(&pillar, pillarID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Pillar not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if input.Name != "" {
		pillar.Name = input.Name
	}
	if input.Description != "" {
		pillar.Description = input.Description
	}
	if input.Weightage != nil {
		pillar.Weightage = *input.Weightage
	}

	if err := fc.DB.Save(&pillar).Error; err != nil {
		return utils.InternalServerError(c, "Could not update pillar")
	}

	return utils.Success(c, fiber.StatusOK, pillar)
}

// TogglePillar cascades deactivation through every lever and variable
// beneath the pillar.
func (fc *FrameworkController) TogglePillar(c *fiber.Ctx) error {
	pillarID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid pillar ID")
	}

	var input struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if err := fc.Hierarchy.SetPillarActive(uint(pillarID), input.IsActive); err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":        pillarID,
		"is_active": input.IsActive,
	})
}

func (fc *FrameworkController) DeletePillar(c *fiber.Ctx) error {
	pillarID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid pillar ID")
	}

	if err := fc.Hierarchy.DeletePillar(uint(pillarID)); err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message": "Pillar deleted",
	})
}

func (fc *FrameworkController) GetLevers(c *fiber.Ctx) error {
	pillarID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid pillar ID")
	}

	var levers []models.Lever
	if err := fc.DB.Where("pillar_id = ?", pillarID).Order("id").Find(&levers).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, levers)
}

func (fc *FrameworkController) CreateLever(c *fiber.Ctx) error {
	pillarID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid pillar ID")
	}

	var input struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Weightage   float64 `json:"weightage"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Name == "" {
		return utils.BadRequest(c, "Name is required")
	}
	if input.Weightage == 0 {
		input.Weightage = 1
	}

	var pillar models.Pillar
	if err := fc.DB.First(&pillar, pillarID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Pillar not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	lever := models.Lever{
		PillarID:    pillar.ID,
		Name:        input.Name,
		Description: input.Description,
		Weightage:   input.Weightage,
		IsActive:    true,
	}
	if err := fc.DB.Create(&lever).Error; err != nil {
		return utils.Error(c, fiber.StatusConflict, errors.New("lever name already exists in this pillar"))
	}

	return utils.Created(c, lever)
}

func (fc *FrameworkController) UpdateLever(c *fiber.Ctx) error {
	leverID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid lever ID")
	}

	var input struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Weightage   *float64 `json:"weightage"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var lever models.Lever
	if err := fc.DB.First(&lever, leverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Lever not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if input.Name != "" {
		lever.Name = input.Name
	}
	if input.Description != "" {
		lever.Description = input.Description
	}
	if input.Weightage != nil {
		lever.Weightage = *input.Weightage
	}

	if err := fc.DB.Save(&lever).Error; err != nil {
		return utils.InternalServerError(c, "Could not update lever")
	}

	return utils.Success(c, fiber.StatusOK, lever)
}

func (fc *FrameworkController) ToggleLever(c *fiber.Ctx) error {
	leverID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid lever ID")
	}

	var input struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if err := fc.Hierarchy.SetLeverActive(uint(leverID), input.IsActive); err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":        leverID,
		"is_active": input.IsActive,
	})
}
