// Copyright (c) 2025-2026 The Mad Batter
// SPDX-License-Identifier: GPL-3.0-or-later

// Package mailer delivers booking and contact notifications to the
// bakery inbox. Sends are fire-and-forget: the submission is persisted
// before any send is attempted, so a delivery failure never loses or
// corrupts the stored record.
package mailer

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/madbatter/site/internal/model"
)

// Message is one outgoing notification.
type Message struct {
	Subject string
	HTML    string
	ReplyTo string
}

// Sender delivers notifications.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ResendSender sends notifications via the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
	to     string
}

// NewResendSender creates a sender delivering to the bakery inbox.
func NewResendSender(apiKey, from, to string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
		to:     to,
	}
}

// Send delivers one notification.
func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{s.to},
		Subject: msg.Subject,
		Html:    msg.HTML,
	}
	if msg.ReplyTo != "" {
		params.ReplyTo = msg.ReplyTo
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		slog.Error("notification send failed", "error", err, "subject", msg.Subject)
		return fmt.Errorf("sending notification: %w", err)
	}

	slog.Info("notification sent", "message_id", sent.Id, "subject", msg.Subject)
	return nil
}

// NopSender drops notifications. Used when no API key is configured so
// form submissions still work in development.
type NopSender struct{}

// Send logs and discards the message.
func (NopSender) Send(_ context.Context, msg Message) error {
	slog.Info("email not configured, dropping notification", "subject", msg.Subject)
	return nil
}

// BookingMessage renders the notification for a booking request.
func BookingMessage(b *model.Booking) Message {
	var sb strings.Builder
	sb.WriteString("<h2>New booking request</h2>")
	row(&sb, "Name", b.Name)
	row(&sb, "Email", b.Email)
	row(&sb, "Phone", b.Phone)
	if b.Category != "" {
		row(&sb, "Category", model.CategoryName(b.Category))
	}
	if !b.EventDate.IsZero() {
		row(&sb, "Event date", b.EventDate.Format("Monday, 2 January 2006"))
	}
	row(&sb, "Details", b.Details)

	return Message{
		Subject: "New booking request from " + b.Name,
		HTML:    sb.String(),
		ReplyTo: b.Email,
	}
}

// ContactMessage renders the notification for a contact form message.
func ContactMessage(m *model.ContactMessage) Message {
	var sb strings.Builder
	sb.WriteString("<h2>New contact message</h2>")
	row(&sb, "Name", m.Name)
	row(&sb, "Email", m.Email)
	row(&sb, "Message", m.Message)

	return Message{
		Subject: "New contact message from " + m.Name,
		HTML:    sb.String(),
		ReplyTo: m.Email,
	}
}

func row(sb *strings.Builder, label, value string) {
	fmt.Fprintf(sb, "<p><strong>%s:</strong> %s</p>", label, html.EscapeString(value))
}
