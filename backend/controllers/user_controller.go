package controllers

import (
	"esgframe/backend/config"
	"esgframe/backend/models"
	"esgframe/backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewUserController(db *gorm.DB, cfg *config.Config) *UserController {
	return &UserController{DB: db, Cfg: cfg}
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns authenticated user's profile and their assessment responses
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	var responses []models.Response
	uc.DB.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&responses)

	var recent []fiber.Map
	for _, response := range responses {
		var survey models.Survey
		if err := uc.DB.First(&survey, response.SurveyID).Error; err != nil {
			continue
		}
		recent = append(recent, fiber.Map{
			"response_id":  response.ID,
			"survey_id":    survey.ID,
			"survey_title": survey.Title,
			"status":       response.Status,
			"score":        response.Score,
			"updated_at":   response.UpdatedAt,
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":           user.ID,
		"username":     user.Username,
		"email":        user.Email,
		"full_name":    user.FullName,
		"organization": user.Organization,
		"is_admin":     user.IsAdmin,
		"created_at":   user.CreatedAt,
		"responses":    recent,
	})
}

// UpdateProfile godoc
// @Summary Update user profile
// @Description Updates authenticated user's profile data
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Username     string `json:"username"`
		Email        string `json:"email"`
		OldPassword  string `json:"old_password"`
		NewPassword  string `json:"new_password"`
		FullName     string `json:"full_name"`
		Organization string `json:"organization"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	if input.Username != "" && input.Username != user.Username {
		var existingUser models.User
		if err := uc.DB.Where("username = ?", input.Username).First(&existingUser).Error; err == nil {
			if existingUser.ID != user.ID {
				return utils.BadRequest(c, "Username already taken")
			}
		}
		user.Username = input.Username
	}

	if input.Email != "" && input.Email != user.Email {
		var existingUser models.User
		if err := uc.DB.Where("email = ?", input.Email).First(&existingUser).Error; err == nil {
			if existingUser.ID != user.ID {
				return utils.BadRequest(c, "Email already taken")
			}
		}
		user.Email = input.Email
	}

	if input.NewPassword != "" {
		if input.OldPassword == "" {
			return utils.BadRequest(c, "Old password is required to set new password")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)); err != nil {
			return utils.Unauthorized(c, "Invalid old password")
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return utils.InternalServerError(c, "Could not hash password")
		}
		user.PasswordHash = string(hashedPassword)
	}

	if input.FullName != "" {
		user.FullName = input.FullName
	}
	if input.Organization != "" {
		user.Organization = input.Organization
	}

	if err := uc.DB.Save(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not update user")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message": "Profile updated successfully",
	})
}
