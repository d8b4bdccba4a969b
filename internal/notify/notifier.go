// internal/notify/notifier.go
// Package notify delivers review-decision notices over SES email and SNS SMS.
// Delivery is best-effort: failures are logged and counted, never propagated
// into the review outcome.
package notify

import (
	"context"
	"fmt"
	"time"

	"ridehail-platform/internal/common/config"
	"ridehail-platform/internal/common/logger"
	"ridehail-platform/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"
)

// SESService and SNSService mirror the AWS client methods used here so tests
// can substitute fakes.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// DecisionNotifier sends the applicant an approval or rejection notice.
type DecisionNotifier struct {
	cfg       config.IntegrationConfig
	sesClient SESService
	snsClient SNSService
	logger    logger.Logger
}

func NewDecisionNotifier(cfg config.IntegrationConfig, sesClient SESService, snsClient SNSService, log logger.Logger) *DecisionNotifier {
	return &DecisionNotifier{
		cfg:       cfg,
		sesClient: sesClient,
		snsClient: snsClient,
		logger:    log.WithFields(map[string]interface{}{"component": "decision-notifier"}),
	}
}

// NotifyDecision emails the applicant the review outcome. A nil profile means
// there is no recipient to notify; that is logged and skipped.
func (n *DecisionNotifier) NotifyDecision(ctx context.Context, app *models.DriverApplication, profile *models.Profile, report *models.VerificationReport) {
	notificationID := uuid.New().String()
	log := n.logger.WithFields(map[string]interface{}{
		"notificationId": notificationID,
		"applicationId":  app.ID,
		"status":         app.Status,
	})

	if profile == nil || profile.Email == "" {
		log.Warn("no recipient for decision notice", nil)
		return
	}

	subject, body := n.renderDecision(app, profile, report)

	if n.cfg.AWS.SES.Enabled && n.sesClient != nil {
		if err := n.sendEmail(ctx, profile.Email, subject, body); err != nil {
			log.Error("decision email send failed", map[string]interface{}{
				"error": err.Error(),
				"email": profile.Email,
			})
		} else {
			log.Info("decision email sent", map[string]interface{}{
				"email":  profile.Email,
				"sentAt": time.Now().UTC().Format(time.RFC3339),
			})
		}
	}

	// SMS goes out only for approvals; rejections carry detail that belongs
	// in email.
	if n.cfg.AWS.SNS.Enabled && n.snsClient != nil && app.Status == models.StatusApproved && profile.Phone != "" {
		if err := n.sendSMS(ctx, profile.Phone, subject); err != nil {
			log.Error("decision SMS send failed", map[string]interface{}{
				"error": err.Error(),
				"phone": profile.Phone,
			})
		}
	}
}

func (n *DecisionNotifier) renderDecision(app *models.DriverApplication, profile *models.Profile, report *models.VerificationReport) (string, string) {
	if app.Status == models.StatusApproved {
		subject := "Your driver application has been approved"
		body := fmt.Sprintf(
			"Hi %s,\n\nYour driver application has been approved. You can start accepting rides now.\n\nReference: %s",
			profile.FullName, report.ReportID,
		)
		return subject, body
	}

	subject := "Update on your driver application"
	reason := "Failed background check"
	if app.RejectionReason != nil {
		reason = *app.RejectionReason
	}
	body := fmt.Sprintf(
		"Hi %s,\n\nWe were unable to approve your driver application.\nReason: %s\n\nReference: %s",
		profile.FullName, reason, report.ReportID,
	)
	return subject, body
}

func (n *DecisionNotifier) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.cfg.AWS.SES.FromEmail),
	})
	return err
}

func (n *DecisionNotifier) sendSMS(ctx context.Context, to, message string) error {
	_, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}
