package handlers

import (
	"net/http"

	"housetab-backend/database"
	"housetab-backend/models"
	"housetab-backend/services"
	"housetab-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// POST /api/households
func CreateHousehold(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var req models.CreateHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	household := models.Household{
		Name:      req.Name,
		CreatedBy: userID,
	}

	if err := database.DB.Create(&household).Error; err != nil {
		utils.InternalError(c, "Failed to create household")
		return
	}

	// Creator is always an admin member
	database.DB.Create(&models.HouseholdMember{
		HouseholdID: household.ID,
		UserID:      userID,
		Role:        "admin",
	})

	// Add/invite the rest
	for _, memberRef := range req.Members {
		if memberID, err := uuid.Parse(memberRef); err == nil {
			if memberID == userID {
				continue
			}
			database.DB.Create(&models.HouseholdMember{
				HouseholdID: household.ID,
				UserID:      memberID,
				Role:        "member",
			})
		} else {
			// Treat as an email invite
			go services.InviteToHousehold(household.ID, userID, memberRef, "")
		}
	}

	// Log activity
	var creator models.User
	database.DB.First(&creator, userID)
	database.DB.Create(&models.Activity{
		HouseholdID: household.ID,
		UserID:      userID,
		Type:        "member_joined",
		ReferenceID: household.ID,
		Description: creator.Name + " created " + household.Name,
	})

	utils.SuccessResponse(c, http.StatusCreated, "Household created", buildHouseholdResponse(household.ID))
}

// GET /api/households
func GetHouseholds(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var memberships []models.HouseholdMember
	database.DB.Where("user_id = ?", userID).Find(&memberships)

	responses := make([]*models.HouseholdResponse, 0, len(memberships))
	for _, m := range memberships {
		if resp := buildHouseholdResponse(m.HouseholdID); resp != nil {
			responses = append(responses, resp)
		}
	}

	utils.SuccessResponse(c, http.StatusOK, "", responses)
}

// GET /api/households/:id
func GetHousehold(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	householdID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid household ID")
		return
	}

	if !isMember(householdID, userID) {
		utils.ErrorResponse(c, http.StatusForbidden, "You are not a member of this household")
		return
	}

	resp := buildHouseholdResponse(householdID)
	if resp == nil {
		utils.NotFound(c, "Household not found")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

// PUT /api/households/:id
func UpdateHousehold(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	householdID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid household ID")
		return
	}

	if !isAdmin(householdID, userID) {
		utils.ErrorResponse(c, http.StatusForbidden, "Only admins can update the household")
		return
	}

	var req struct {
		Name     string `json:"name"`
		ImageURL string `json:"image_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	var household models.Household
	if err := database.DB.First(&household, householdID).Error; err != nil {
		utils.NotFound(c, "Household not found")
		return
	}

	if req.Name != "" {
		household.Name = req.Name
	}
	if req.ImageURL != "" {
		household.ImageURL = req.ImageURL
	}

	if err := database.DB.Save(&household).Error; err != nil {
		utils.InternalError(c, "Failed to update household")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Household updated", buildHouseholdResponse(householdID))
}

// POST /api/households/:id/members
func AddMember(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	householdID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid household ID")
		return
	}

	if !isMember(householdID, userID) {
		utils.ErrorResponse(c, http.StatusForbidden, "You are not a member of this household")
		return
	}

	var req models.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	var newUser models.User
	found := false

	if req.UserID != "" {
		if memberID, err := uuid.Parse(req.UserID); err == nil {
			if err := database.DB.First(&newUser, memberID).Error; err == nil {
				found = true
			}
		}
	} else if req.Email != "" {
		if err := database.DB.Where("email = ?", req.Email).First(&newUser).Error; err == nil {
			found = true
		}
	}

	if found {
		var existing models.HouseholdMember
		if err := database.DB.Where("household_id = ? AND user_id = ?", householdID, newUser.ID).First(&existing).Error; err == nil {
			utils.BadRequest(c, "User is already a member")
			return
		}

		database.DB.Create(&models.HouseholdMember{
			HouseholdID: householdID,
			UserID:      newUser.ID,
			Role:        "member",
		})

		var household models.Household
		database.DB.First(&household, householdID)
		var adder models.User
		database.DB.First(&adder, userID)

		database.DB.Create(&models.Activity{
			HouseholdID: householdID,
			UserID:      newUser.ID,
			Type:        "member_joined",
			Description: newUser.Name + " joined " + household.Name,
		})

		go services.GetNotificationService().NotifyMemberAdded(household, adder, newUser)

		utils.SuccessResponse(c, http.StatusOK, "Member added", buildHouseholdResponse(householdID))
		return
	}

	// User not registered yet: send an invitation instead
	if req.Email == "" && req.Phone == "" {
		utils.BadRequest(c, "User not found; provide an email or phone to invite")
		return
	}
	go services.InviteToHousehold(householdID, userID, req.Email, req.Phone)

	utils.SuccessResponse(c, http.StatusOK, "Invitation sent", nil)
}

// DELETE /api/households/:id/members/:userId
func RemoveMember(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	householdID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid household ID")
		return
	}

	targetID, err := utils.ParseUUID(c.Param("userId"))
	if err != nil {
		utils.BadRequest(c, "Invalid user ID")
		return
	}

	// Members may leave; only admins may remove others
	if targetID != userID && !isAdmin(householdID, userID) {
		utils.ErrorResponse(c, http.StatusForbidden, "Only admins can remove other members")
		return
	}

	result := database.DB.Where("household_id = ? AND user_id = ?", householdID, targetID).Delete(&models.HouseholdMember{})
	if result.RowsAffected == 0 {
		utils.NotFound(c, "Member not found")
		return
	}

	var target models.User
	database.DB.First(&target, targetID)
	var household models.Household
	database.DB.First(&household, householdID)
	database.DB.Create(&models.Activity{
		HouseholdID: householdID,
		UserID:      targetID,
		Type:        "member_left",
		Description: target.Name + " left " + household.Name,
	})

	utils.SuccessResponse(c, http.StatusOK, "Member removed", nil)
}

// POST /api/households/:id/invite
func InviteToHouseholdHandler(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	householdID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid household ID")
		return
	}

	if !isMember(householdID, userID) {
		utils.ErrorResponse(c, http.StatusForbidden, "You are not a member of this household")
		return
	}

	var req models.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if req.Email == "" && req.Phone == "" {
		utils.BadRequest(c, "Email or phone is required")
		return
	}

	go services.InviteToHousehold(householdID, userID, req.Email, req.Phone)

	utils.SuccessResponse(c, http.StatusOK, "Invitation sent", nil)
}

// Helper: check household membership
func isMember(householdID uuid.UUID, userID uuid.UUID) bool {
	var member models.HouseholdMember
	err := database.DB.Where("household_id = ? AND user_id = ?", householdID, userID).First(&member).Error
	return err == nil
}

func isAdmin(householdID uuid.UUID, userID uuid.UUID) bool {
	var member models.HouseholdMember
	err := database.DB.Where("household_id = ? AND user_id = ? AND role = ?", householdID, userID, "admin").First(&member).Error
	return err == nil
}

// memberIDs returns the household roster as string ids for the engine.
func memberIDs(householdID uuid.UUID) []string {
	var members []models.HouseholdMember
	database.DB.Where("household_id = ?", householdID).Find(&members)

	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID.String())
	}
	return ids
}

func buildHouseholdResponse(householdID uuid.UUID) *models.HouseholdResponse {
	var household models.Household
	if err := database.DB.Preload("Members.User").First(&household, householdID).Error; err != nil {
		return nil
	}

	members := make([]models.HouseholdMemberResponse, 0, len(household.Members))
	for _, m := range household.Members {
		members = append(members, models.HouseholdMemberResponse{
			UserID:    m.UserID,
			Name:      m.User.Name,
			Email:     m.User.Email,
			AvatarURL: m.User.AvatarURL,
			Role:      m.Role,
			JoinedAt:  m.JoinedAt,
		})
	}

	return &models.HouseholdResponse{
		ID:        household.ID,
		Name:      household.Name,
		ImageURL:  household.ImageURL,
		CreatedBy: household.CreatedBy,
		Members:   members,
		CreatedAt: household.CreatedAt,
	}
}
