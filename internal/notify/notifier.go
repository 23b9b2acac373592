// Package notify sends the operator notification email for an accepted
// contact message through SES.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/ryosuz/receive-contact/internal/contact"
)

// SESClient abstracts the SES send operation for dependency inversion.
type SESClient interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESNotifier composes and sends a fixed-format notification email. Sender
// and recipient come from configuration; the submitter's address goes into
// Reply-To and the body only, never the envelope sender, so SES verification
// and deliverability are unaffected by submitter input.
type SESNotifier struct {
	client SESClient
	sender string
	// recipient is the operator address that receives every notification.
	recipient string
}

// NewSESNotifier creates a new SESNotifier.
func NewSESNotifier(client SESClient, sender, recipient string) *SESNotifier {
	return &SESNotifier{
		client:    client,
		sender:    sender,
		recipient: recipient,
	}
}

// Notify sends one notification email for msg. A single attempt; the caller
// treats failures as best-effort relative to the already persisted message.
func (n *SESNotifier) Notify(ctx context.Context, msg *contact.ContactMessage) error {
	_, err := n.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(n.sender),
		Destination: &types.Destination{
			ToAddresses: []string{n.recipient},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subjectLine(msg)),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(bodyText(msg)),
				},
			},
		},
		ReplyToAddresses: []string{msg.Email},
	})
	if err != nil {
		return fmt.Errorf("send notification for message %s: %w", msg.ID, err)
	}
	return nil
}

// subjectLine derives the email subject deterministically from the message.
func subjectLine(msg *contact.ContactMessage) string {
	if msg.Subject != "" {
		return fmt.Sprintf("[Contact] %s", msg.Subject)
	}
	return fmt.Sprintf("[Contact] New message from %s", msg.Name)
}

// bodyText derives the plain-text email body deterministically from the
// message fields.
func bodyText(msg *contact.ContactMessage) string {
	return fmt.Sprintf(
		"A contact form submission was received.\n\n"+
			"Name: %s\n"+
			"Email: %s\n"+
			"Received: %s\n\n"+
			"--- Message ---\n%s\n",
		msg.Name,
		msg.Email,
		msg.ReceivedAt.UTC().Format(time.RFC3339),
		msg.Message,
	)
}
