package notify

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// SMTPSender delivers mail over SMTP with STARTTLS. It sends the plain text
// body only; HTML rendering is a SendGrid concern.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	useTLS   bool
	fromAddr string
	fromName string
	toAddr   string
}

// NewSMTPSender creates a sender for the given SMTP settings and addresses.
func NewSMTPSender(host string, port int, username, password string, useTLS bool, fromAddr, fromName, toAddr string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		useTLS:   useTLS,
		fromAddr: fromAddr,
		fromName: fromName,
		toAddr:   toAddr,
	}
}

// Send writes the message to the SMTP server. The context deadline bounds the
// connection; once connected the transfer uses a fixed socket deadline.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if s.host == "" || s.fromAddr == "" {
		return fmt.Errorf("smtp not configured")
	}
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	auth := smtp.PlainAuth("", s.username, s.password, s.host)

	fromName := s.fromName
	if fromName == "" {
		fromName = "ProofOK"
	}
	fromHeader := fmt.Sprintf("%s <%s>", encodeRFC2047(fromName), s.fromAddr)

	headers := map[string]string{
		"From":         fromHeader,
		"To":           s.toAddr,
		"Subject":      encodeRFC2047(msg.Subject),
		"MIME-Version": "1.0",
		"Content-Type": "text/plain; charset=UTF-8",
	}
	var body strings.Builder
	for k, v := range headers {
		body.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	body.WriteString("\r\n")
	body.WriteString(msg.Text)

	if s.useTLS {
		d := net.Dialer{Timeout: 5 * time.Second}
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return err
		}
		_ = conn.SetDeadline(time.Now().Add(15 * time.Second))
		c, err := smtp.NewClient(conn, s.host)
		if err != nil {
			_ = conn.Close()
			return err
		}
		defer c.Close()
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
				return err
			}
		}
		if s.username != "" {
			if err := c.Auth(auth); err != nil {
				return err
			}
		}
		if err := c.Mail(s.fromAddr); err != nil {
			return err
		}
		if err := c.Rcpt(s.toAddr); err != nil {
			return err
		}
		wc, err := c.Data()
		if err != nil {
			return err
		}
		if _, err := wc.Write([]byte(body.String())); err != nil {
			_ = wc.Close()
			return err
		}
		return wc.Close()
	}

	// Plain SMTP without TLS (not recommended)
	return smtp.SendMail(addr, auth, s.fromAddr, []string{s.toAddr}, []byte(body.String()))
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
