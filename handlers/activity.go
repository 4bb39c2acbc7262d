package handlers

import (
	"net/http"

	"housetab-backend/database"
	"housetab-backend/models"
	"housetab-backend/utils"

	"github.com/gin-gonic/gin"
)

// GET /api/households/:id/activity
func GetHouseholdActivity(c *gin.Context) {
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

	var pagination utils.PaginationQuery
	if err := c.ShouldBindQuery(&pagination); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	var activities []models.Activity
	database.DB.Preload("User").
		Where("household_id = ?", householdID).
		Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit).
		Find(&activities)

	utils.SuccessResponse(c, http.StatusOK, "", activities)
}

// GET /api/activity
//
// The cross-household feed for the current user.
func GetActivityFeed(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var memberships []models.HouseholdMember
	database.DB.Where("user_id = ?", userID).Find(&memberships)

	if len(memberships) == 0 {
		utils.SuccessResponse(c, http.StatusOK, "", []models.Activity{})
		return
	}

	householdIDs := make([]interface{}, 0, len(memberships))
	names := make(map[string]string, len(memberships))
	for _, m := range memberships {
		householdIDs = append(householdIDs, m.HouseholdID)
		var h models.Household
		if err := database.DB.First(&h, m.HouseholdID).Error; err == nil {
			names[h.ID.String()] = h.Name
		}
	}

	var pagination utils.PaginationQuery
	if err := c.ShouldBindQuery(&pagination); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	var activities []models.Activity
	database.DB.Preload("User").
		Where("household_id IN ?", householdIDs).
		Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit).
		Find(&activities)

	for i := range activities {
		activities[i].HouseholdName = names[activities[i].HouseholdID.String()]
	}

	utils.SuccessResponse(c, http.StatusOK, "", activities)
}
