package handlers

import (
	"net/http"

	"housetab-backend/database"
	"housetab-backend/engine"
	"housetab-backend/models"
	"housetab-backend/services"
	"housetab-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GET /api/households/:id/balances
//
// Balances are computed at read time by netting the unsettled ledger entries;
// nothing is stored. The summary is cached briefly since every screen of the
// app renders it.
func GetHouseholdBalances(c *gin.Context) {
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

	if cached, ok := services.GetCachedBalances(c.Request.Context(), householdID); ok {
		utils.SuccessResponse(c, http.StatusOK, "", cached)
		return
	}

	var household models.Household
	if err := database.DB.First(&household, householdID).Error; err != nil {
		utils.NotFound(c, "Household not found")
		return
	}

	var rows []models.DebtLedgerEntry
	database.DB.Where("household_id = ? AND is_settled = ?", householdID, false).Find(&rows)

	entries := make([]engine.DebtEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, toEngineDebtEntry(row))
	}

	users := loadUsers(entries)
	currency := currencyFor(users, userID)

	balances := make([]models.Balance, 0)
	for _, pb := range engine.NetBalances(entries) {
		from, to, amount := pb.MemberA, pb.MemberB, pb.NetCents
		if amount < 0 {
			from, to, amount = pb.MemberB, pb.MemberA, -amount
		}
		fromID, _ := uuid.Parse(from)
		toID, _ := uuid.Parse(to)
		balances = append(balances, models.Balance{
			From:     fromID,
			FromName: users[from].Name,
			To:       toID,
			ToName:   users[to].Name,
			NetCents: amount,
			Currency: currency,
		})
	}

	var totalSpent int64
	database.DB.Model(&models.Transaction{}).
		Where("household_id = ?", householdID).
		Select("COALESCE(SUM(final_total_cents), 0)").
		Scan(&totalSpent)

	summary := &models.HouseholdBalanceSummary{
		HouseholdID:     householdID,
		HouseholdName:   household.Name,
		Balances:        balances,
		TotalSpentCents: totalSpent,
	}

	services.CacheBalances(c.Request.Context(), householdID, summary)

	utils.SuccessResponse(c, http.StatusOK, "", summary)
}

// GET /api/balances
//
// The overall view across every household: one net line per housemate the
// current user has unsettled debts with.
func GetOverallBalances(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	store := services.NewLedgerStore()
	entries, err := store.ListUnsettledDebts(c.Request.Context(), userID.String())
	if err != nil {
		utils.InternalError(c, "Failed to load debts")
		return
	}

	users := loadUsers(entries)
	currency := currencyFor(users, userID)
	me := userID.String()

	friends := make([]models.FriendBalance, 0)
	for _, pb := range engine.NetBalances(entries) {
		var other string
		var net int64
		switch {
		case pb.MemberA == me:
			other = pb.MemberB
			net = -pb.NetCents // NetCents > 0 means I owe them
		case pb.MemberB == me:
			other = pb.MemberA
			net = pb.NetCents
		default:
			continue
		}
		otherID, _ := uuid.Parse(other)
		friend := users[other]
		friends = append(friends, models.FriendBalance{
			UserID:    otherID,
			Name:      friend.Name,
			Email:     friend.Email,
			AvatarURL: friend.AvatarURL,
			NetCents:  net,
			Currency:  currency,
		})
	}

	position := engine.Positions(entries)[me]

	utils.SuccessResponse(c, http.StatusOK, "", models.OverallBalanceSummary{
		TotalOwedCents:  position.OwedCents,
		TotalOwingCents: position.OwingCents,
		Friends:         friends,
	})
}

// PUT /api/debts/:id/settle
//
// Settling is all-or-nothing: the entry flips to settled, no partial amounts.
func SettleDebt(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	entryID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid debt entry ID")
		return
	}

	var entry models.DebtLedgerEntry
	if err := database.DB.First(&entry, entryID).Error; err != nil {
		utils.NotFound(c, "Debt entry not found")
		return
	}

	if entry.BorrowerID != userID && entry.LenderID != userID {
		utils.ErrorResponse(c, http.StatusForbidden, "You are not a party to this debt")
		return
	}

	if entry.IsSettled {
		utils.BadRequest(c, "Debt is already settled")
		return
	}

	if err := database.DB.Model(&entry).Update("is_settled", true).Error; err != nil {
		utils.InternalError(c, "Failed to settle debt")
		return
	}
	entry.IsSettled = true

	var borrower, lender models.User
	database.DB.First(&borrower, entry.BorrowerID)
	database.DB.First(&lender, entry.LenderID)
	var household models.Household
	database.DB.First(&household, entry.HouseholdID)

	database.DB.Create(&models.Activity{
		HouseholdID: entry.HouseholdID,
		UserID:      userID,
		Type:        "debt_settled",
		ReferenceID: entry.ID,
		Description: borrower.Name + " settled " + utils.FormatCents(entry.AmountCents, borrower.Currency) + " with " + lender.Name,
	})

	go services.GetNotificationService().NotifyDebtSettled(entry, borrower, lender, household)
	services.InvalidateBalances(c.Request.Context(), entry.HouseholdID)

	utils.SuccessResponse(c, http.StatusOK, "Debt settled", entry)
}

// GET /api/debts
func GetDebts(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var rows []models.DebtLedgerEntry
	database.DB.Preload("Borrower").Preload("Lender").
		Where("(borrower_id = ? OR lender_id = ?) AND is_settled = ?", userID, userID, false).
		Order("created_at DESC").
		Find(&rows)

	utils.SuccessResponse(c, http.StatusOK, "", rows)
}

func toEngineDebtEntry(row models.DebtLedgerEntry) engine.DebtEntry {
	return engine.DebtEntry{
		ID:            row.ID.String(),
		BorrowerID:    row.BorrowerID.String(),
		LenderID:      row.LenderID.String(),
		AmountCents:   row.AmountCents,
		IsSettled:     row.IsSettled,
		TransactionID: row.TransactionID.String(),
	}
}

// loadUsers fetches every user referenced by the entries in one query.
func loadUsers(entries []engine.DebtEntry) map[string]models.User {
	idSet := make(map[string]bool)
	for _, e := range entries {
		idSet[e.BorrowerID] = true
		idSet[e.LenderID] = true
	}

	ids := make([]uuid.UUID, 0, len(idSet))
	for id := range idSet {
		if parsed, err := uuid.Parse(id); err == nil {
			ids = append(ids, parsed)
		}
	}

	users := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return users
	}

	var rows []models.User
	database.DB.Where("id IN ?", ids).Find(&rows)
	for _, u := range rows {
		users[u.ID.String()] = u
	}
	return users
}

func currencyFor(users map[string]models.User, userID uuid.UUID) string {
	if u, ok := users[userID.String()]; ok && u.Currency != "" {
		return u.Currency
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err == nil && user.Currency != "" {
		return user.Currency
	}
	return "USD"
}
