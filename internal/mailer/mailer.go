// Package mailer sends transactional email through Amazon SES. When no
// sender address is configured the mailer runs disabled and logs the link
// instead, which keeps local development working without AWS credentials.
package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/skillence/skillence/internal/logger"
)

// Config holds the mailer settings.
type Config struct {
	Region    string
	FromEmail string
	FromName  string
	BaseURL   string
}

// Mailer sends sign-in links over SES.
type Mailer struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	baseURL   string
	enabled   bool
	log       *logger.Logger
}

// New creates a Mailer. An empty FromEmail yields a disabled mailer.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*Mailer, error) {
	if cfg.FromEmail == "" {
		log.Info("mailer disabled: no sender address configured, sign-in links will be logged")
		return &Mailer{
			baseURL: cfg.BaseURL,
			enabled: false,
			log:     log,
		}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	log.Info("mailer enabled", "from", cfg.FromEmail, "region", cfg.Region)

	return &Mailer{
		client:    sesv2.NewFromConfig(awsCfg),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		baseURL:   cfg.BaseURL,
		enabled:   true,
		log:       log,
	}, nil
}

// Enabled reports whether the mailer actually sends email.
func (m *Mailer) Enabled() bool {
	return m.enabled
}

// SendLoginLink mails a single-use sign-in link to the address. When the
// mailer is disabled the link is logged instead.
func (m *Mailer) SendLoginLink(ctx context.Context, toEmail, token string) error {
	link := fmt.Sprintf("%s/web/auth/callback?token=%s", m.baseURL, token)

	if !m.enabled {
		m.log.Info("mailer disabled, sign-in link not sent", "to", toEmail, "link", link)
		return nil
	}

	subject := "Your Skillence sign-in link"

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h1>Sign in to Skillence</h1>
		<p>Click the link below to sign in. It can be used once and expires in 15 minutes.</p>
		<p><a href="%s">Sign in</a></p>
		<p style="word-break: break-all; font-size: 12px; color: #666;">%s</p>
		<p>If you didn't request this link, you can safely ignore this email.</p>
	</div>
</body>
</html>
`, link, link)

	textBody := fmt.Sprintf(`Sign in to Skillence

Click the link below to sign in. It can be used once and expires in 15 minutes.

%s

If you didn't request this link, you can safely ignore this email.
`, link)

	return m.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (m *Mailer) send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := m.fromEmail
	if m.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", m.fromName, m.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := m.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("send email to %s: %w", toEmail, err)
	}

	m.log.Info("email sent", "to", toEmail, "subject", subject)
	return nil
}
