package handlers

import (
	"net/http"

	"housetab-backend/database"
	"housetab-backend/models"
	"housetab-backend/utils"

	"github.com/gin-gonic/gin"
)

// GET /api/households/:id/transactions
func GetTransactions(c *gin.Context) {
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

	var transactions []models.Transaction
	database.DB.Preload("Payer").Preload("Items.Shares").
		Where("household_id = ?", householdID).
		Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit).
		Find(&transactions)

	responses := make([]models.TransactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		responses = append(responses, buildTransactionResponse(tx))
	}

	utils.SuccessResponse(c, http.StatusOK, "", responses)
}

// GET /api/transactions/:id
func GetTransaction(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	transactionID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid transaction ID")
		return
	}

	var tx models.Transaction
	if err := database.DB.Preload("Payer").Preload("Items.Shares").First(&tx, transactionID).Error; err != nil {
		utils.NotFound(c, "Transaction not found")
		return
	}

	if !isMember(tx.HouseholdID, userID) {
		utils.ErrorResponse(c, http.StatusForbidden, "You are not a member of this household")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", buildTransactionResponse(tx))
}

func buildTransactionResponse(tx models.Transaction) models.TransactionResponse {
	// Collect every user referenced by the shares for display names
	userIDs := make(map[string]bool)
	for _, item := range tx.Items {
		for _, share := range item.Shares {
			userIDs[share.UserID.String()] = true
		}
	}
	names := make(map[string]string, len(userIDs))
	if len(userIDs) > 0 {
		ids := make([]interface{}, 0, len(userIDs))
		for id := range userIDs {
			ids = append(ids, id)
		}
		var users []models.User
		database.DB.Where("id IN ?", ids).Find(&users)
		for _, u := range users {
			names[u.ID.String()] = u.Name
		}
	}

	items := make([]models.TransactionItemResponse, 0, len(tx.Items))
	for _, item := range tx.Items {
		shares := make([]models.ShareResponse, 0, len(item.Shares))
		for _, share := range item.Shares {
			shares = append(shares, models.ShareResponse{
				UserID:     share.UserID,
				UserName:   names[share.UserID.String()],
				ShareCents: share.ShareCents,
			})
		}
		items = append(items, models.TransactionItemResponse{
			ID:         item.ID,
			Name:       item.Name,
			PriceCents: item.PriceCents,
			SplitKind:  item.SplitKind,
			Shares:     shares,
		})
	}

	return models.TransactionResponse{
		ID:              tx.ID,
		HouseholdID:     tx.HouseholdID,
		PaidBy:          tx.PaidBy,
		PayerName:       tx.Payer.Name,
		FinalTotalCents: tx.FinalTotalCents,
		Items:           items,
		CreatedAt:       tx.CreatedAt,
	}
}
