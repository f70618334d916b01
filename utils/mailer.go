package utils

import (
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/Habib-0007/habsblog-api/config"
)

// SendMail sends an email using SMTP settings from config. When html is
// non-empty the message is sent as text/html.
func SendMail(to, subject, body, html string) error {
	cfg := config.Get()
	if cfg.SMTPHost == "" || cfg.SMTPFrom == "" {
		return fmt.Errorf("smtp not configured")
	}
	addr := net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort))
	auth := smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)

	fromName := cfg.SMTPFromName
	if fromName == "" {
		fromName = "Habsblog"
	}
	fromHeader := fmt.Sprintf("%s <%s>", encodeRFC2047(fromName), cfg.SMTPFrom)

	contentType := "text/plain; charset=UTF-8"
	content := body
	if html != "" {
		contentType = "text/html; charset=UTF-8"
		content = html
	}

	headers := map[string]string{
		"From":         fromHeader,
		"To":           to,
		"Subject":      encodeRFC2047(subject),
		"MIME-Version": "1.0",
		"Content-Type": contentType,
	}
	var msg strings.Builder
	for k, v := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	msg.WriteString("\r\n")
	msg.WriteString(content)

	if cfg.SMTPTLS {
		// STARTTLS with timeouts
		d := net.Dialer{Timeout: 5 * time.Second}
		conn, err := d.Dial("tcp", addr)
		if err != nil {
			return err
		}
		_ = conn.SetDeadline(time.Now().Add(15 * time.Second))
		host, _, _ := net.SplitHostPort(addr)
		c, err := smtp.NewClient(conn, host)
		if err != nil {
			_ = conn.Close()
			return err
		}
		defer c.Close()
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
				return err
			}
		}
		if cfg.SMTPUsername != "" {
			if err := c.Auth(auth); err != nil {
				return err
			}
		}
		if err := c.Mail(cfg.SMTPFrom); err != nil {
			return err
		}
		if err := c.Rcpt(to); err != nil {
			return err
		}
		wc, err := c.Data()
		if err != nil {
			return err
		}
		if _, err := wc.Write([]byte(msg.String())); err != nil {
			_ = wc.Close()
			return err
		}
		return wc.Close()
	}

	// Plain SMTP without TLS (not recommended)
	return smtp.SendMail(addr, auth, cfg.SMTPFrom, []string{to}, []byte(msg.String()))
}

// SendWelcomeEmail greets a newly registered user. Callers treat this as
// fire-and-forget; failures are logged and never abort registration.
func SendWelcomeEmail(to, name string) error {
	subject := "Welcome to Habsblog"
	html := fmt.Sprintf(`
    <div style="max-width: 600px; margin: 0 auto; padding: 20px; font-family: Arial, sans-serif;">
      <h2 style="color: #333;">Welcome, %s!</h2>
      <p>Thank you for joining our blog platform. We're excited to have you on board!</p>
      <p>With your new account, you can:</p>
      <ul>
        <li>Create and publish blog posts</li>
        <li>Comment on other posts</li>
        <li>Interact with other writers and readers</li>
      </ul>
      <p>Happy blogging!</p>
      <p>Regards,<br>The Blog Team</p>
    </div>`, name)
	text := fmt.Sprintf("Welcome to Habsblog, %s! Thank you for joining.", name)
	return SendMail(to, subject, text, html)
}

// SendPasswordResetEmail mails the reset link. The link expires with the
// stored reset token (10 minutes).
func SendPasswordResetEmail(to, name, resetURL string) error {
	subject := "Password Reset Request"
	html := fmt.Sprintf(`
    <div style="max-width: 600px; margin: 0 auto; padding: 20px; font-family: Arial, sans-serif;">
      <h2 style="color: #333;">Hello %s,</h2>
      <p>You are receiving this email because you (or someone else) has requested the reset of a password.</p>
      <p>Please click on the following link to complete the process:</p>
      <p>
        <a href="%s" style="display: inline-block; padding: 10px 20px; background-color: #4CAF50; color: white; text-decoration: none; border-radius: 4px;">
          Reset Password
        </a>
      </p>
      <p>This link will expire in 10 minutes.</p>
      <p>If you did not request this, please ignore this email and your password will remain unchanged.</p>
      <p>Regards,<br>The Blog Team</p>
    </div>`, name, resetURL)
	text := fmt.Sprintf("You are receiving this email because a password reset was requested. Please go to: %s", resetURL)
	return SendMail(to, subject, text, html)
}

// encodeRFC2047 encodes a string for non-ASCII mail headers.
func encodeRFC2047(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= 128 {
			return fmt.Sprintf("=?UTF-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(s)))
		}
	}
	return s
}
