// Package notify delivers quote confirmations over email and SMS. Delivery
// is best effort: failures are logged and recorded, never surfaced to the
// submitting request.
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"

	"gendra-backend/internal/common/config"
	"gendra-backend/internal/common/logger"
	"gendra-backend/internal/telemetry"
)

// EmailSender is the slice of the SES client the notifier needs.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// SMSSender is the slice of the SNS client the notifier needs.
type SMSSender interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// QuoteNotification carries everything needed to confirm a submission.
type QuoteNotification struct {
	SubmissionID string
	IndustryName string
	QuoteLow     float64
	QuoteHigh    float64
	LeadEstimate string
	Email        string
	Phone        string
}

// Notifier sends quote confirmations through whichever channels are enabled
// and have a recipient.
type Notifier struct {
	cfg    config.NotificationConfig
	email  EmailSender
	sms    SMSSender
	sink   telemetry.Sink
	logger logger.Logger
}

func NewNotifier(cfg config.NotificationConfig, email EmailSender, sms SMSSender, sink telemetry.Sink, log logger.Logger) *Notifier {
	if sink == nil {
		sink = telemetry.NopSink{}
	}
	return &Notifier{
		cfg:   cfg,
		email: email,
		sms:   sms,
		sink:  sink,
		logger: log.WithFields(map[string]interface{}{
			"component": "notifier",
		}),
	}
}

// QuoteSubmitted delivers a confirmation for one submission. Each channel is
// attempted independently so an email failure never blocks the SMS.
func (n *Notifier) QuoteSubmitted(ctx context.Context, notification QuoteNotification) {
	if n.cfg.Email.Enabled && n.email != nil && notification.Email != "" {
		if err := n.sendEmail(ctx, notification); err != nil {
			n.recordFailure(ctx, "email", notification.SubmissionID, err)
		}
	}

	if n.cfg.SMS.Enabled && n.sms != nil && notification.Phone != "" {
		if err := n.sendSMS(ctx, notification); err != nil {
			n.recordFailure(ctx, "sms", notification.SubmissionID, err)
		}
	}
}

func (n *Notifier) sendEmail(ctx context.Context, notification QuoteNotification) error {
	subject := fmt.Sprintf("Your %s quote is ready", notification.IndustryName)
	body := fmt.Sprintf(
		"Thank you for your request.\n\n"+
			"Estimated quote range: $%.2f - $%.2f\n"+
			"Estimated lead time: %s\n\n"+
			"Reference: %s\n",
		notification.QuoteLow, notification.QuoteHigh,
		notification.LeadEstimate, notification.SubmissionID,
	)

	_, err := n.email.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(n.cfg.Email.FromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{notification.Email},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return err
	}

	n.logger.Info("quote confirmation email sent", map[string]interface{}{
		"submissionId": notification.SubmissionID,
	})
	return nil
}

func (n *Notifier) sendSMS(ctx context.Context, notification QuoteNotification) error {
	message := fmt.Sprintf(
		"Your %s quote: $%.0f-$%.0f, lead time %s. Ref %s",
		notification.IndustryName,
		notification.QuoteLow, notification.QuoteHigh,
		notification.LeadEstimate, notification.SubmissionID,
	)

	input := &sns.PublishInput{
		PhoneNumber: aws.String(notification.Phone),
		Message:     aws.String(message),
	}
	if n.cfg.SMS.SenderID != "" {
		input.MessageAttributes = map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(n.cfg.SMS.SenderID),
			},
		}
	}

	if _, err := n.sms.Publish(ctx, input); err != nil {
		return err
	}

	n.logger.Info("quote confirmation SMS sent", map[string]interface{}{
		"submissionId": notification.SubmissionID,
	})
	return nil
}

func (n *Notifier) recordFailure(ctx context.Context, channel, submissionID string, err error) {
	n.logger.Warn("notification delivery failed", map[string]interface{}{
		"channel":      channel,
		"submissionId": submissionID,
		"error":        err.Error(),
	})

	rec := telemetry.NewRecord("NOTIFICATION_SEND_FAILED", err.Error(), "", "", map[string]interface{}{
		"channel":      channel,
		"submissionId": submissionID,
	})
	if werr := n.sink.Write(ctx, rec); werr != nil {
		n.logger.Warn("failed to write telemetry record", map[string]interface{}{
			"error": werr.Error(),
		})
	}
}
