package handlers

import (
	"errors"
	"net/http"

	"housetab-backend/database"
	"housetab-backend/engine"
	"housetab-backend/models"
	"housetab-backend/services"
	"housetab-backend/utils"

	"github.com/gin-gonic/gin"
)

// GET /api/households/:id/shopping-items?status=pending
func GetShoppingItems(c *gin.Context) {
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

	query := database.DB.Preload("Requester").Where("household_id = ?", householdID)
	if status := c.Query("status"); status != "" {
		if status != models.ShoppingStatusPending && status != models.ShoppingStatusPurchased {
			utils.BadRequest(c, "Invalid status filter")
			return
		}
		query = query.Where("status = ?", status)
	}

	var items []models.ShoppingListItem
	query.Order("created_at ASC").Find(&items)

	utils.SuccessResponse(c, http.StatusOK, "", items)
}

// POST /api/households/:id/shopping-items
func CreateShoppingItem(c *gin.Context) {
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

	var req models.CreateShoppingItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	item := models.ShoppingListItem{
		HouseholdID: householdID,
		Name:        req.Name,
		Category:    req.Category,
		RequestedBy: userID,
		BountyCents: req.BountyCents,
		Status:      models.ShoppingStatusPending,
	}

	if err := database.DB.Create(&item).Error; err != nil {
		utils.InternalError(c, "Failed to create shopping item")
		return
	}

	var requester models.User
	database.DB.First(&requester, userID)
	database.DB.Create(&models.Activity{
		HouseholdID: householdID,
		UserID:      userID,
		Type:        "item_added",
		ReferenceID: item.ID,
		Description: requester.Name + " added " + item.Name + " to the shopping list",
	})

	utils.SuccessResponse(c, http.StatusCreated, "Shopping item created", item)
}

// PUT /api/shopping-items/:id
func UpdateShoppingItem(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	itemID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid item ID")
		return
	}

	var item models.ShoppingListItem
	if err := database.DB.First(&item, itemID).Error; err != nil {
		utils.NotFound(c, "Shopping item not found")
		return
	}

	if !isMember(item.HouseholdID, userID) {
		utils.ErrorResponse(c, http.StatusForbidden, "You are not a member of this household")
		return
	}

	if item.Status == models.ShoppingStatusPurchased {
		utils.BadRequest(c, "Cannot edit a purchased item")
		return
	}

	var req models.UpdateShoppingItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if req.Name != "" {
		item.Name = req.Name
	}
	if req.Category != "" {
		item.Category = req.Category
	}
	if req.BountyCents != nil {
		if *req.BountyCents < 0 {
			utils.BadRequest(c, "Bounty cannot be negative")
			return
		}
		item.BountyCents = *req.BountyCents
	}

	if err := database.DB.Save(&item).Error; err != nil {
		utils.InternalError(c, "Failed to update shopping item")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Shopping item updated", item)
}

// DELETE /api/shopping-items/:id
func DeleteShoppingItem(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	itemID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid item ID")
		return
	}

	var item models.ShoppingListItem
	if err := database.DB.First(&item, itemID).Error; err != nil {
		utils.NotFound(c, "Shopping item not found")
		return
	}

	if !isMember(item.HouseholdID, userID) {
		utils.ErrorResponse(c, http.StatusForbidden, "You are not a member of this household")
		return
	}

	if item.Status == models.ShoppingStatusPurchased {
		utils.BadRequest(c, "Cannot delete a purchased item")
		return
	}

	if err := database.DB.Delete(&item).Error; err != nil {
		utils.InternalError(c, "Failed to delete shopping item")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Shopping item deleted", nil)
}

// PUT /api/shopping-items/:id/status
//
// The caller sends the status it last observed; the update only lands if the
// row still has that status. Two housemates toggling the same item race, one
// gets a 409 and refetches.
func UpdateShoppingItemStatus(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	itemID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid item ID")
		return
	}

	var item models.ShoppingListItem
	if err := database.DB.First(&item, itemID).Error; err != nil {
		utils.NotFound(c, "Shopping item not found")
		return
	}

	if !isMember(item.HouseholdID, userID) {
		utils.ErrorResponse(c, http.StatusForbidden, "You are not a member of this household")
		return
	}

	var req models.UpdateShoppingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	store := services.NewLedgerStore()
	_, err = store.UpdateShoppingItemStatus(c.Request.Context(), itemID.String(),
		engine.ItemStatus(req.ExpectedStatus), engine.ItemStatus(req.Status), userID.String())
	if err != nil {
		respondStatusUpdateError(c, err)
		return
	}

	database.DB.First(&item, itemID)

	if req.Status == models.ShoppingStatusPurchased {
		var purchaser models.User
		database.DB.First(&purchaser, userID)
		database.DB.Create(&models.Activity{
			HouseholdID: item.HouseholdID,
			UserID:      userID,
			Type:        "item_purchased",
			ReferenceID: item.ID,
			Description: purchaser.Name + " purchased " + item.Name,
		})

		if item.BountyCents > 0 {
			var household models.Household
			database.DB.First(&household, item.HouseholdID)
			go services.GetNotificationService().NotifyBountyClaimed(item, purchaser, household)
		}
	}

	utils.SuccessResponse(c, http.StatusOK, "Status updated", item)
}

// A compare-and-swap miss is the caller's race to resolve; anything else is a
// storage failure.
func respondStatusUpdateError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrStatusConflict) {
		utils.Conflict(c, "Item status changed; refresh and retry")
		return
	}
	utils.InternalError(c, "Failed to update item status")
}
