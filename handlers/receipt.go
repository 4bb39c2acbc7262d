package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"housetab-backend/config"
	"housetab-backend/database"
	"housetab-backend/engine"
	"housetab-backend/models"
	"housetab-backend/services"
	"housetab-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// POST /api/households/:id/receipts
//
// Starts an expense-entry session: the payer has a receipt in hand (captured
// or typed up client-side) and wants to itemize, assign, and post it. The open
// shopping list is snapshotted for bounty matching.
func StartReceiptSession(c *gin.Context) {
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

	var req models.StartReceiptSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	store := services.NewLedgerStore()
	openItems, err := store.ListOpenShoppingItems(c.Request.Context(), householdID.String())
	if err != nil {
		utils.InternalError(c, "Failed to load shopping list")
		return
	}

	roster := memberIDs(householdID)
	session := sessionManager().Create(householdID, userID, roster)

	lines := make([]engine.ReceiptLineItem, 0, len(req.Items))
	for _, in := range req.Items {
		id := in.ID
		if id == "" {
			id = uuid.New().String()
		}
		lines = append(lines, engine.ReceiptLineItem{
			ID:           id,
			RawName:      in.Name,
			PriceCents:   in.PriceCents,
			DisplayPrice: in.DisplayPrice,
		})
	}

	if err := session.BeginItemizing(lines, openItems); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Session started", buildSessionResponse(session, householdID))
}

// GET /api/receipts/:sessionId
func GetReceiptSession(c *gin.Context) {
	withSession(c, func(session *engine.Session, householdID uuid.UUID) error {
		utils.SuccessResponse(c, http.StatusOK, "", buildSessionResponse(session, householdID))
		return nil
	})
}

// POST /api/receipts/:sessionId/items
func AddReceiptItem(c *gin.Context) {
	var req models.ReceiptLineInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	withSession(c, func(session *engine.Session, householdID uuid.UUID) error {
		id := req.ID
		if id == "" {
			id = uuid.New().String()
		}
		if err := session.AddItem(engine.ReceiptLineItem{
			ID:           id,
			RawName:      req.Name,
			PriceCents:   req.PriceCents,
			DisplayPrice: req.DisplayPrice,
		}); err != nil {
			return err
		}
		utils.SuccessResponse(c, http.StatusOK, "Item added", buildSessionResponse(session, householdID))
		return nil
	})
}

// PUT /api/receipts/:sessionId/items/:itemId
func UpdateReceiptItem(c *gin.Context) {
	var req models.ReceiptLineInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	withSession(c, func(session *engine.Session, householdID uuid.UUID) error {
		itemID := c.Param("itemId")

		// Keep the existing assignment through a name/price edit
		var assignment engine.Assignment
		for _, item := range session.Items() {
			if item.ID == itemID {
				assignment = item.Assignment
			}
		}

		if err := session.UpdateItem(engine.ReceiptLineItem{
			ID:           itemID,
			RawName:      req.Name,
			PriceCents:   req.PriceCents,
			DisplayPrice: req.DisplayPrice,
			Assignment:   assignment,
		}); err != nil {
			return err
		}
		utils.SuccessResponse(c, http.StatusOK, "Item updated", buildSessionResponse(session, householdID))
		return nil
	})
}

// DELETE /api/receipts/:sessionId/items/:itemId
func RemoveReceiptItem(c *gin.Context) {
	withSession(c, func(session *engine.Session, householdID uuid.UUID) error {
		if err := session.RemoveItem(c.Param("itemId")); err != nil {
			return err
		}
		utils.SuccessResponse(c, http.StatusOK, "Item removed", buildSessionResponse(session, householdID))
		return nil
	})
}

// PUT /api/receipts/:sessionId/items/:itemId/assign
func AssignReceiptItem(c *gin.Context) {
	var req models.AssignItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	withSession(c, func(session *engine.Session, householdID uuid.UUID) error {
		var assignment engine.Assignment
		var err error
		switch req.Kind {
		case "individual":
			assignment, err = engine.Individual(req.Members[0])
		case "even_split":
			assignment, err = engine.EvenSplit(req.Members)
		case "custom_split":
			assignment, err = engine.CustomSplit(req.Members, req.Weights)
		}
		if err != nil {
			return err
		}

		if err := session.Assign(c.Param("itemId"), assignment); err != nil {
			return err
		}
		utils.SuccessResponse(c, http.StatusOK, "Item assigned", buildSessionResponse(session, householdID))
		return nil
	})
}

// GET /api/receipts/:sessionId/candidates
func GetMatchCandidates(c *gin.Context) {
	withSession(c, func(session *engine.Session, householdID uuid.UUID) error {
		utils.SuccessResponse(c, http.StatusOK, "", buildCandidateResponses(session))
		return nil
	})
}

// POST /api/receipts/:sessionId/candidates/:candidateId/resolve
func ResolveMatchCandidate(c *gin.Context) {
	var req models.ResolveCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	withSession(c, func(session *engine.Session, householdID uuid.UUID) error {
		if err := session.Resolve(c.Param("candidateId"), *req.Accept); err != nil {
			return err
		}
		utils.SuccessResponse(c, http.StatusOK, "Candidate resolved", buildSessionResponse(session, householdID))
		return nil
	})
}

// POST /api/receipts/:sessionId/post
func PostReceipt(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	sessionID, err := utils.ParseUUID(c.Param("sessionId"))
	if err != nil {
		utils.BadRequest(c, "Invalid session ID")
		return
	}

	store := services.NewLedgerStore()
	var result *engine.PostResult
	var householdID uuid.UUID

	err = sessionManager().With(sessionID, userID, func(session *engine.Session) error {
		hid, err := utils.ParseUUID(session.HouseholdID)
		if err != nil {
			return err
		}
		householdID = hid

		posted, err := session.Post(c.Request.Context(), store)
		if err != nil {
			return err
		}
		result = posted
		return nil
	})
	if err != nil {
		respondSessionError(c, err)
		return
	}

	transactionID, err := utils.ParseUUID(result.Transaction.ID)
	if err != nil {
		utils.InternalError(c, "Post succeeded but transaction ID is malformed")
		return
	}

	finishPostedReceipt(householdID, userID, transactionID, result)
	sessionManager().Delete(sessionID)

	utils.SuccessResponse(c, http.StatusCreated, "Receipt posted", models.SettlementResponse{
		TransactionID:         transactionID,
		PerMember:             result.Settlement.PerMember,
		PayerShareCents:       result.Settlement.PayerShareCents,
		TotalBountyCents:      result.Settlement.TotalBountyCents,
		PayerNetPositionCents: result.Settlement.PayerNetPositionCents,
		FinalTotalCents:       result.Settlement.TotalCents,
	})
}

// finishPostedReceipt records activity and fans out notifications after a
// successful post.
func finishPostedReceipt(householdID, payerID, transactionID uuid.UUID, result *engine.PostResult) {
	var payer models.User
	database.DB.First(&payer, payerID)
	var household models.Household
	database.DB.First(&household, householdID)

	database.DB.Create(&models.Activity{
		HouseholdID: householdID,
		UserID:      payerID,
		Type:        "transaction_posted",
		ReferenceID: transactionID,
		Description: payer.Name + " posted a receipt of " + utils.FormatCents(result.Settlement.TotalCents, payer.Currency),
	})

	for _, claimed := range result.Claimed {
		itemID, err := utils.ParseUUID(claimed.ID)
		if err != nil {
			continue
		}
		var item models.ShoppingListItem
		if err := database.DB.First(&item, itemID).Error; err != nil {
			continue
		}
		database.DB.Create(&models.Activity{
			HouseholdID: householdID,
			UserID:      payerID,
			Type:        "bounty_claimed",
			ReferenceID: itemID,
			Description: payer.Name + " purchased " + item.Name + " off the shopping list",
		})
		go services.GetNotificationService().NotifyBountyClaimed(item, payer, household)
	}

	var tx models.Transaction
	if err := database.DB.First(&tx, transactionID).Error; err == nil {
		go services.GetNotificationService().NotifyTransactionPosted(tx, result.Settlement, payer, household)
	}

	services.InvalidateBalances(context.Background(), householdID)
}

func sessionManager() *services.SessionManager {
	ttlMin, err := strconv.Atoi(config.AppConfig.SessionTTLMin)
	if err != nil || ttlMin <= 0 {
		ttlMin = 60
	}
	return services.GetSessionManager(time.Duration(ttlMin) * time.Minute)
}

// withSession resolves the session from the URL, checks ownership, and runs fn
// with exclusive access, mapping engine errors to HTTP statuses.
func withSession(c *gin.Context, fn func(*engine.Session, uuid.UUID) error) {
	userID := utils.GetCurrentUserID(c)

	sessionID, err := utils.ParseUUID(c.Param("sessionId"))
	if err != nil {
		utils.BadRequest(c, "Invalid session ID")
		return
	}

	err = sessionManager().With(sessionID, userID, func(session *engine.Session) error {
		householdID, err := utils.ParseUUID(session.HouseholdID)
		if err != nil {
			return err
		}
		return fn(session, householdID)
	})
	if err != nil {
		respondSessionError(c, err)
	}
}

func respondSessionError(c *gin.Context, err error) {
	var validation *engine.ValidationError
	if errors.As(err, &validation) {
		utils.BadRequest(c, validation.Error())
		return
	}

	var pending *engine.PendingConfirmationError
	if errors.As(err, &pending) {
		c.JSON(http.StatusConflict, utils.APIResponse{
			Success: false,
			Message: "Fuzzy match candidates need confirmation before posting",
			Data:    candidateResponsesFor(pending.Pending, nil),
		})
		return
	}

	var external *engine.ExternalIOError
	if errors.As(err, &external) {
		utils.ErrorResponse(c, http.StatusBadGateway, "A storage call failed; the post can be retried")
		return
	}

	utils.NotFound(c, err.Error())
}

func buildSessionResponse(session *engine.Session, householdID uuid.UUID) models.ReceiptSessionResponse {
	items := session.Items()
	lines := make([]models.ReceiptLineResponse, 0, len(items))
	var total int64
	for _, item := range items {
		total += item.PriceCents
		lines = append(lines, models.ReceiptLineResponse{
			ID:           item.ID,
			Name:         item.RawName,
			PriceCents:   item.PriceCents,
			DisplayPrice: item.DisplayPrice,
			SplitKind:    item.Assignment.Kind().String(),
			Members:      item.Assignment.Members(),
		})
	}

	return models.ReceiptSessionResponse{
		SessionID:   session.ID,
		HouseholdID: householdID,
		State:       string(session.State()),
		Items:       lines,
		Candidates:  buildCandidateResponses(session),
		TotalCents:  total,
	}
}

func buildCandidateResponses(session *engine.Session) []models.MatchCandidateResponse {
	return candidateResponsesFor(session.Candidates(), session.ShoppingItems())
}

func candidateResponsesFor(candidates []engine.MatchCandidate, shopping []engine.ShoppingItem) []models.MatchCandidateResponse {
	byID := make(map[string]engine.ShoppingItem, len(shopping))
	for _, item := range shopping {
		byID[item.ID] = item
	}

	responses := make([]models.MatchCandidateResponse, 0, len(candidates))
	for _, cand := range candidates {
		kind := "fuzzy"
		if cand.Kind == engine.MatchExact {
			kind = "exact"
		}
		shop := byID[cand.ShoppingItemID]
		responses = append(responses, models.MatchCandidateResponse{
			ID:             cand.ID,
			ReceiptItemID:  cand.ReceiptItemID,
			ShoppingItemID: cand.ShoppingItemID,
			ShoppingName:   shop.Name,
			BountyCents:    shop.BountyCents,
			Kind:           kind,
			Confidence:     cand.Confidence,
			Confirmed:      string(cand.Confirmed),
		})
	}
	return responses
}
