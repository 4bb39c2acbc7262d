package services

import (
	"log"

	"housetab-backend/database"
	"housetab-backend/models"

	"github.com/google/uuid"
)

// InviteToHousehold brings someone into a household. If they already have an
// account they are added as a member right away; otherwise a pending
// invitation is created and redeemed when they register.
func InviteToHousehold(householdID uuid.UUID, invitedBy uuid.UUID, email string, phone string) {
	// A user with an account skips the invitation entirely
	if email != "" {
		var existingUser models.User
		if err := database.DB.Where("email = ?", email).First(&existingUser).Error; err == nil {
			addExistingMember(householdID, invitedBy, existingUser)
			return
		}
	}

	var existing models.Invitation
	query := database.DB.Where("household_id = ? AND status = ?", householdID, "pending")
	if email != "" {
		query = query.Where("email = ?", email)
	} else if phone != "" {
		query = query.Where("phone = ?", phone)
	}
	if err := query.First(&existing).Error; err == nil {
		log.Printf("⚠️  %s/%s already has a pending invitation to household %s", email, phone, householdID)
		return
	}

	invitation := models.Invitation{
		HouseholdID: householdID,
		InvitedBy:   invitedBy,
		Email:       email,
		Phone:       phone,
		Status:      "pending",
	}
	if err := database.DB.Create(&invitation).Error; err != nil {
		log.Printf("❌ Failed to create invitation: %v", err)
		return
	}

	var inviter models.User
	database.DB.First(&inviter, invitedBy)
	var household models.Household
	database.DB.First(&household, householdID)

	if email != "" {
		GetNotificationService().NotifyInvitation(email, inviter.Name, household.Name)
	}

	log.Printf("✅ Invited %s/%s to household %s", email, phone, householdID)
}

// addExistingMember makes an already-registered user a member, with the same
// activity row and notification a direct member-add produces.
func addExistingMember(householdID uuid.UUID, invitedBy uuid.UUID, user models.User) {
	var membership models.HouseholdMember
	if err := database.DB.Where("household_id = ? AND user_id = ?", householdID, user.ID).First(&membership).Error; err == nil {
		return
	}

	database.DB.Create(&models.HouseholdMember{
		HouseholdID: householdID,
		UserID:      user.ID,
		Role:        "member",
	})

	var household models.Household
	database.DB.First(&household, householdID)
	database.DB.Create(&models.Activity{
		HouseholdID: householdID,
		UserID:      user.ID,
		Type:        "member_joined",
		Description: user.Name + " moved into " + household.Name,
	})

	var inviter models.User
	if err := database.DB.First(&inviter, invitedBy).Error; err == nil {
		go GetNotificationService().NotifyMemberAdded(household, inviter, user)
	}

	log.Printf("✅ Added %s to household %s", user.Email, householdID)
}
