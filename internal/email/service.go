package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/lankamarket/lankamarket-api/internal/logging"
)

var welcomeTemplate = template.Must(template.New("welcome").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #0F766E; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
        .content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
        .button { display: inline-block; background-color: #0F766E; color: white !important; padding: 12px 30px; text-decoration: none; border-radius: 5px; margin: 20px 0; }
        .footer { margin-top: 30px; font-size: 12px; color: #666; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Ayubowan, {{.FirstName}}!</h1>
    </div>
    <div class="content">
        <p>Your LankaMarket account is ready. Browse products and services from small businesses across Sri Lanka.</p>
        <a href="{{.ListingsLink}}" class="button" style="color: white !important;">Start browsing</a>
        <p>Share your referral code with friends: <strong>{{.ReferralCode}}</strong></p>
    </div>
    <div class="footer">
        <p>If you didn't create an account, you can safely ignore this email.</p>
    </div>
</body>
</html>
`))

// Sender delivers a rendered message. smtpSender is the production one.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

type Service struct {
	sender      Sender
	frontendURL string
}

func NewService(smtpHost, smtpPort, smtpUser, smtpPassword, frontendURL string) *Service {
	return NewServiceWithSender(&smtpSender{
		host:     smtpHost,
		port:     smtpPort,
		user:     smtpUser,
		password: smtpPassword,
		from:     smtpUser,
	}, frontendURL)
}

func NewServiceWithSender(sender Sender, frontendURL string) *Service {
	return &Service{sender: sender, frontendURL: frontendURL}
}

// SendWelcomeEmail greets a newly registered customer.
// This method is designed to be called in a goroutine
func (s *Service) SendWelcomeEmail(ctx context.Context, toEmail, firstName, referralCode string) error {
	logger := logging.GetLoggerFromContext(ctx)

	body, err := renderWelcome(firstName, s.frontendURL+"/listings", referralCode)
	if err != nil {
		logger.Error("failed to render welcome email template", "error", err)
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sender.Send(toEmail, "Welcome to LankaMarket", body); err != nil {
		logger.Error("failed to send welcome email", "email", toEmail, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("welcome email sent", "email", toEmail)
	return nil
}

func renderWelcome(firstName, listingsLink, referralCode string) (string, error) {
	var buf bytes.Buffer
	data := struct {
		FirstName    string
		ListingsLink string
		ReferralCode string
	}{
		FirstName:    firstName,
		ListingsLink: listingsLink,
		ReferralCode: referralCode,
	}

	if err := welcomeTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}

type smtpSender struct {
	host, port, user, password, from string
}

func (s *smtpSender) Send(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.user, s.password, s.host)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.from, to, subject, body,
	))

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, auth, s.from, []string{to}, msg)
}
