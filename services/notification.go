package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"

	"housetab-backend/config"
	"housetab-backend/database"
	"housetab-backend/engine"
	"housetab-backend/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"google.golang.org/api/option"
)

type NotificationService struct {
	fcm *messaging.Client
}

var notifService *NotificationService

func GetNotificationService() *NotificationService {
	if notifService == nil {
		notifService = &NotificationService{}
		notifService.initFirebase()
	}
	return notifService
}

func (ns *NotificationService) initFirebase() {
	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(config.AppConfig.FirebaseCredPath))
	if err != nil {
		log.Printf("⚠️  Firebase not configured, push notifications disabled: %v", err)
		return
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		log.Printf("⚠️  Firebase messaging unavailable: %v", err)
		return
	}
	ns.fcm = client
}

// ============================================================
// PUSH NOTIFICATIONS via Firebase Cloud Messaging
// ============================================================

func (ns *NotificationService) sendPush(fcmToken string, title string, body string, data map[string]string) {
	if ns.fcm == nil || fcmToken == "" {
		return
	}

	msg := &messaging.Message{
		Token: fcmToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := ns.fcm.Send(context.Background(), msg); err != nil {
		log.Printf("❌ FCM send error: %v", err)
		return
	}
	log.Printf("✅ Push notification sent: %s", title)
}

// ============================================================
// EMAIL NOTIFICATIONS via SendGrid
// ============================================================

func (ns *NotificationService) sendEmail(toEmail string, toName string, subject string, htmlBody string) {
	if config.AppConfig.SendGridAPIKey == "" {
		log.Printf("⚠️  SendGrid API key not set, skipping email to %s", toEmail)
		return
	}

	from := mail.NewEmail(config.AppConfig.AppName, config.AppConfig.SendGridFrom)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, "", htmlBody)

	client := sendgrid.NewSendClient(config.AppConfig.SendGridAPIKey)
	resp, err := client.Send(message)
	if err != nil {
		log.Printf("❌ Email send error: %v", err)
		return
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		log.Printf("✅ Email sent to %s", toEmail)
	} else {
		log.Printf("⚠️  SendGrid returned status: %d", resp.StatusCode)
	}
}

// ============================================================
// NOTIFICATION EVENTS
// ============================================================

// NotifyTransactionPosted tells every member who owes a share about the new
// grocery run.
func (ns *NotificationService) NotifyTransactionPosted(tx models.Transaction, settlement *engine.Settlement, payer models.User, household models.Household) {
	for member, owedCents := range settlement.PerMember {
		memberID, err := uuid.Parse(member)
		if err != nil {
			continue
		}

		var user models.User
		if err := database.DB.First(&user, memberID).Error; err != nil {
			continue
		}

		title := fmt.Sprintf("%s posted a grocery run", payer.Name)
		body := fmt.Sprintf("You owe %s for the %s trip in %s",
			formatAmount(owedCents, user.Currency), payer.Name, household.Name)

		ns.sendPush(user.FCMToken, title, body, map[string]string{
			"type":           "transaction_posted",
			"transaction_id": tx.ID.String(),
			"household_id":   tx.HouseholdID.String(),
		})

		htmlBody := buildTransactionEmailHTML(payer.Name, user.Name, household.Name,
			formatAmount(tx.FinalTotalCents, user.Currency), formatAmount(owedCents, user.Currency))
		ns.sendEmail(user.Email, user.Name,
			fmt.Sprintf("%s posted a grocery run in %s", payer.Name, household.Name), htmlBody)
	}
}

// NotifyBountyClaimed tells the requester their item got picked up.
func (ns *NotificationService) NotifyBountyClaimed(item models.ShoppingListItem, purchaser models.User, household models.Household) {
	if item.RequestedBy == purchaser.ID {
		return
	}

	var requester models.User
	if err := database.DB.First(&requester, item.RequestedBy).Error; err != nil {
		return
	}

	title := fmt.Sprintf("%s picked up %q", purchaser.Name, item.Name)
	body := fmt.Sprintf("%s claimed the %s bounty in %s",
		purchaser.Name, formatAmount(item.BountyCents, requester.Currency), household.Name)

	ns.sendPush(requester.FCMToken, title, body, map[string]string{
		"type":         "bounty_claimed",
		"item_id":      item.ID.String(),
		"household_id": item.HouseholdID.String(),
	})
}

// NotifyDebtSettled tells the lender their IOU was paid off.
func (ns *NotificationService) NotifyDebtSettled(entry models.DebtLedgerEntry, borrower models.User, lender models.User, household models.Household) {
	title := fmt.Sprintf("%s settled up", borrower.Name)
	body := fmt.Sprintf("%s settled %s in %s",
		borrower.Name, formatAmount(entry.AmountCents, lender.Currency), household.Name)

	ns.sendPush(lender.FCMToken, title, body, map[string]string{
		"type":         "debt_settled",
		"household_id": entry.HouseholdID.String(),
	})

	htmlBody := buildSettlementEmailHTML(borrower.Name, lender.Name,
		formatAmount(entry.AmountCents, lender.Currency), household.Name)
	ns.sendEmail(lender.Email, lender.Name,
		fmt.Sprintf("%s settled up with you in %s", borrower.Name, household.Name), htmlBody)
}

// NotifyMemberAdded sends push + email to the newly added member
func (ns *NotificationService) NotifyMemberAdded(household models.Household, adder models.User, newMember models.User) {
	title := fmt.Sprintf("You were added to \"%s\"", household.Name)
	body := fmt.Sprintf("%s added you to the household \"%s\"", adder.Name, household.Name)

	ns.sendPush(newMember.FCMToken, title, body, map[string]string{
		"type":         "member_added",
		"household_id": household.ID.String(),
	})

	htmlBody := buildMemberAddedEmailHTML(adder.Name, newMember.Name, household.Name)
	ns.sendEmail(newMember.Email, newMember.Name, title, htmlBody)
}

// NotifyInvitation sends email to non-registered users
func (ns *NotificationService) NotifyInvitation(email string, inviterName string, householdName string) {
	subject := fmt.Sprintf("%s invited you to join \"%s\" on %s", inviterName, householdName, config.AppConfig.AppName)
	htmlBody := buildInvitationEmailHTML(inviterName, householdName)
	ns.sendEmail(email, "", subject, htmlBody)
}

func formatAmount(cents int64, currency string) string {
	if currency == "" {
		currency = "USD"
	}
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s %s%d.%02d", currency, sign, cents/100, cents%100)
}

// ============================================================
// EMAIL TEMPLATES
// ============================================================

func buildTransactionEmailHTML(payerName, userName, householdName, total, owed string) string {
	tmpl := `
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
	<div style="background: white; border-radius: 12px; padding: 32px; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
		<h2 style="color: #1DB954; margin-top: 0;">🛒 New Grocery Run</h2>
		<p>Hi <strong>{{.UserName}}</strong>,</p>
		<p><strong>{{.PayerName}}</strong> posted a grocery run in <strong>{{.HouseholdName}}</strong>:</p>
		<div style="background: #f8f9fa; border-radius: 8px; padding: 16px; margin: 16px 0;">
			<p style="margin: 4px 0; color: #666;">Trip total: {{.Total}}</p>
			<p style="margin: 4px 0; color: #e53e3e; font-size: 18px;"><strong>Your share: {{.Owed}}</strong></p>
		</div>
		<p style="color: #999; font-size: 12px; margin-top: 24px;">— HouseTab</p>
	</div>
</body>
</html>`

	return renderTemplate(tmpl, map[string]string{
		"UserName":      userName,
		"PayerName":     payerName,
		"HouseholdName": householdName,
		"Total":         total,
		"Owed":          owed,
	})
}

func buildSettlementEmailHTML(borrowerName, lenderName, amount, householdName string) string {
	tmpl := `
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
	<div style="background: white; border-radius: 12px; padding: 32px; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
		<h2 style="color: #1DB954; margin-top: 0;">✅ Debt Settled</h2>
		<p>Hi <strong>{{.LenderName}}</strong>,</p>
		<p><strong>{{.BorrowerName}}</strong> settled <strong>{{.Amount}}</strong> with you in <strong>{{.HouseholdName}}</strong>.</p>
		<p style="color: #999; font-size: 12px; margin-top: 24px;">— HouseTab</p>
	</div>
</body>
</html>`

	return renderTemplate(tmpl, map[string]string{
		"BorrowerName":  borrowerName,
		"LenderName":    lenderName,
		"Amount":        amount,
		"HouseholdName": householdName,
	})
}

func buildMemberAddedEmailHTML(adderName, memberName, householdName string) string {
	tmpl := `
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
	<div style="background: white; border-radius: 12px; padding: 32px; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
		<h2 style="color: #1DB954; margin-top: 0;">🏠 Welcome to {{.HouseholdName}}</h2>
		<p>Hi <strong>{{.MemberName}}</strong>,</p>
		<p><strong>{{.AdderName}}</strong> added you to the household <strong>{{.HouseholdName}}</strong>.</p>
		<p style="color: #999; font-size: 12px; margin-top: 24px;">— HouseTab</p>
	</div>
</body>
</html>`

	return renderTemplate(tmpl, map[string]string{
		"AdderName":     adderName,
		"MemberName":    memberName,
		"HouseholdName": householdName,
	})
}

func buildInvitationEmailHTML(inviterName, householdName string) string {
	tmpl := `
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
	<div style="background: white; border-radius: 12px; padding: 32px; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
		<h2 style="color: #1DB954; margin-top: 0;">🏠 You're Invited</h2>
		<p><strong>{{.InviterName}}</strong> invited you to join <strong>{{.HouseholdName}}</strong> on HouseTab.</p>
		<p>Sign up to share the shopping list, claim bounties, and split grocery runs.</p>
		<p style="color: #999; font-size: 12px; margin-top: 24px;">— HouseTab</p>
	</div>
</body>
</html>`

	return renderTemplate(tmpl, map[string]string{
		"InviterName":   inviterName,
		"HouseholdName": householdName,
	})
}

func renderTemplate(tmpl string, data map[string]string) string {
	t, err := template.New("email").Parse(tmpl)
	if err != nil {
		log.Printf("❌ Email template error: %v", err)
		return ""
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		log.Printf("❌ Email template error: %v", err)
		return ""
	}
	return buf.String()
}
