package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/robson-hennes/myfinai/internal/billing"
	"github.com/robson-hennes/myfinai/internal/observability"
	"github.com/robson-hennes/myfinai/internal/settings"
	"github.com/robson-hennes/myfinai/internal/templates"
)

// Fallback messages used when no active template exists for a trigger.
var defaultMessages = map[templates.Trigger]string{
	templates.TriggerReminder: "Olá {{cliente}}! Lembrete: o serviço {{servico}} no valor de {{valor}} vence em {{vencimento}}.",
	templates.TriggerDue:      "Olá {{cliente}}! O serviço {{servico}} no valor de {{valor}} vence hoje ({{vencimento}}).",
	templates.TriggerOverdue:  "Olá {{cliente}}! O pagamento do serviço {{servico}} no valor de {{valor}} venceu em {{vencimento}}. Regularize em {{link_pagamento}}.",
	templates.TriggerReceipt:  "Olá {{cliente}}! Confirmamos o recebimento do pagamento de {{valor}} referente a {{servico}}. Obrigado!",
}

var defaultSubjects = map[templates.Trigger]string{
	templates.TriggerReminder: "Lembrete de vencimento",
	templates.TriggerDue:      "Fatura vence hoje",
	templates.TriggerOverdue:  "Pagamento em atraso",
	templates.TriggerReceipt:  "Pagamento recebido",
}

// TriggerFor maps a billing cycle state to the notification trigger used
// for a manually fired charge.
func TriggerFor(state billing.CycleState) templates.Trigger {
	if state == billing.CycleOverdue {
		return templates.TriggerOverdue
	}
	return templates.TriggerDue
}

// ScheduledTrigger decides whether the daily scan should fire for a
// subscription and with which trigger. Paid cycles stay quiet. Reminders go
// out two days before the due date, due notices on the day itself, overdue
// notices on days 1, 7, 15 and 30 past due.
func ScheduledTrigger(status billing.Status, daysUntilDue int) (templates.Trigger, bool) {
	if status.State == billing.CyclePaid {
		return "", false
	}
	if status.State == billing.CycleOverdue {
		switch status.DaysOverdue {
		case 1, 7, 15, 30:
			return templates.TriggerOverdue, true
		}
		return "", false
	}
	switch daysUntilDue {
	case 2:
		return templates.TriggerReminder, true
	case 0:
		return templates.TriggerDue, true
	}
	return "", false
}

// Request carries everything the dispatcher needs to notify one client
// about one subscription cycle.
type Request struct {
	SubscriptionID uuid.UUID
	ClientName     string
	Email          *string
	Phone          *string
	ServiceName    string
	Amount         float64
	DueDate        *time.Time
	Trigger        templates.Trigger
}

// Result summarizes the delivery attempts for one request.
type Result struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// Dispatcher renders templates and pushes notifications through the
// configured channels, logging every attempt.
type Dispatcher struct {
	logger      *slog.Logger
	templates   *templates.Service
	settings    *settings.Service
	mailer      Mailer
	whatsapp    WhatsAppSender
	log         LogRepository
	metrics     *observability.Metrics
	paymentLink string
}

// NewDispatcher builds a Dispatcher instance.
func NewDispatcher(
	logger *slog.Logger,
	tpls *templates.Service,
	cfg *settings.Service,
	mailer Mailer,
	whatsapp WhatsAppSender,
	log LogRepository,
	metrics *observability.Metrics,
	paymentLink string,
) *Dispatcher {
	return &Dispatcher{
		logger:      logger,
		templates:   tpls,
		settings:    cfg,
		mailer:      mailer,
		whatsapp:    whatsapp,
		log:         log,
		metrics:     metrics,
		paymentLink: paymentLink,
	}
}

// Dispatch sends the notification over every channel that has both a
// reachable contact and working configuration. A channel failure is logged
// and counted, never fatal for the other channel.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Result, error) {
	if !req.Trigger.Valid() {
		return nil, errors.New("notify: invalid trigger")
	}

	cfg, err := d.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	vars := templates.Vars{
		Client:      req.ClientName,
		Service:     req.ServiceName,
		Amount:      billing.FormatBRL(req.Amount),
		PaymentLink: d.paymentLink,
	}
	if req.DueDate != nil {
		vars.DueDate = req.DueDate.Format("02/01/2006")
	}

	var res Result
	if req.Email != nil && *req.Email != "" && cfg.EmailConfigured() {
		d.sendEmail(ctx, *cfg, req, vars, &res)
	}
	if req.Phone != nil && *req.Phone != "" && cfg.WhatsAppConfigured() {
		d.sendWhatsApp(ctx, *cfg, req, vars, &res)
	}
	return &res, nil
}

func (d *Dispatcher) sendEmail(ctx context.Context, cfg settings.Settings, req Request, vars templates.Vars, res *Result) {
	subject, body := d.resolve(ctx, templates.ChannelEmail, req.Trigger)
	msg := Email{
		To:      *req.Email,
		Subject: templates.Render(subject, vars),
		Body:    templates.Render(body, vars),
	}
	err := d.mailer.Send(ctx, cfg, msg)
	d.record(ctx, req, templates.ChannelEmail, msg.To, err, res)
}

func (d *Dispatcher) sendWhatsApp(ctx context.Context, cfg settings.Settings, req Request, vars templates.Vars, res *Result) {
	_, body := d.resolve(ctx, templates.ChannelWhatsApp, req.Trigger)
	msg := WhatsAppMessage{
		Number: NormalizePhone(*req.Phone),
		Text:   templates.Render(body, vars),
	}
	err := d.whatsapp.Send(ctx, cfg.WhatsAppWebhookURL, msg)
	d.record(ctx, req, templates.ChannelWhatsApp, msg.Number, err, res)
}

// resolve finds the active template for the channel and trigger. Overdue
// falls back to the due template before the built-in default.
func (d *Dispatcher) resolve(ctx context.Context, channel templates.Channel, trigger templates.Trigger) (subject, body string) {
	tpl, err := d.templates.FindActive(ctx, channel, trigger)
	if errors.Is(err, templates.ErrNotFound) && trigger == templates.TriggerOverdue {
		tpl, err = d.templates.FindActive(ctx, channel, templates.TriggerDue)
	}
	if err != nil {
		if !errors.Is(err, templates.ErrNotFound) {
			d.logger.Warn("template lookup failed, using default",
				slog.String("channel", string(channel)),
				slog.String("trigger", string(trigger)),
				slog.Any("error", err))
		}
		return defaultSubjects[trigger], defaultMessages[trigger]
	}
	subject = defaultSubjects[trigger]
	if tpl.Subject != nil && *tpl.Subject != "" {
		subject = *tpl.Subject
	}
	return subject, tpl.Content
}

func (d *Dispatcher) record(ctx context.Context, req Request, channel templates.Channel, recipient string, sendErr error, res *Result) {
	entry := LogEntry{
		SubscriptionID: &req.SubscriptionID,
		Channel:        channel,
		Trigger:        req.Trigger,
		Recipient:      recipient,
		Status:         DeliverySent,
	}
	if sendErr != nil {
		entry.Status = DeliveryFailed
		msg := sendErr.Error()
		entry.Error = &msg
		res.Failed++
		d.logger.Error("notification delivery failed",
			slog.String("channel", string(channel)),
			slog.String("recipient", recipient),
			slog.Any("error", sendErr))
	} else {
		res.Sent++
	}
	if d.metrics != nil {
		d.metrics.ObserveNotification(string(channel), entry.Status)
	}
	if err := d.log.Record(ctx, entry); err != nil {
		d.logger.Error("record notification log", slog.Any("error", err))
	}
}
