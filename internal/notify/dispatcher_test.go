package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/robson-hennes/myfinai/internal/billing"
	"github.com/robson-hennes/myfinai/internal/settings"
	"github.com/robson-hennes/myfinai/internal/templates"
)

type fakeTemplateRepo struct {
	items []templates.Template
}

func (f *fakeTemplateRepo) Create(_ context.Context, t templates.Template) (*templates.Template, error) {
	t.ID = uuid.New()
	f.items = append(f.items, t)
	return &t, nil
}

func (f *fakeTemplateRepo) Get(_ context.Context, id uuid.UUID) (*templates.Template, error) {
	for _, t := range f.items {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, templates.ErrNotFound
}

func (f *fakeTemplateRepo) List(_ context.Context, _ templates.ListTemplatesRequest) ([]templates.Template, error) {
	return f.items, nil
}

func (f *fakeTemplateRepo) FindActive(_ context.Context, channel templates.Channel, trigger templates.Trigger) (*templates.Template, error) {
	for _, t := range f.items {
		if t.Channel == channel && t.Trigger == trigger && t.IsActive {
			return &t, nil
		}
	}
	return nil, templates.ErrNotFound
}

func (f *fakeTemplateRepo) Update(_ context.Context, _ uuid.UUID, _ map[string]any) error {
	return nil
}

func (f *fakeTemplateRepo) Delete(_ context.Context, _ uuid.UUID) error {
	return nil
}

type fakeSettingsRepo struct {
	cfg settings.Settings
}

func (f *fakeSettingsRepo) Get(_ context.Context) (*settings.Settings, error) {
	cfg := f.cfg
	return &cfg, nil
}

func (f *fakeSettingsRepo) Save(_ context.Context, s settings.Settings) (*settings.Settings, error) {
	f.cfg = s
	return &s, nil
}

type fakeMailer struct {
	sent []Email
	err  error
}

func (f *fakeMailer) Send(_ context.Context, _ settings.Settings, msg Email) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeWhatsApp struct {
	sent []WhatsAppMessage
	err  error
}

func (f *fakeWhatsApp) Send(_ context.Context, _ string, msg WhatsAppMessage) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeLog struct {
	entries []LogEntry
}

func (f *fakeLog) Record(_ context.Context, e LogEntry) error {
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeLog) List(_ context.Context, _ int) ([]LogEntry, error) {
	return f.entries, nil
}

func strPtr(s string) *string { return &s }

func configured() settings.Settings {
	return settings.Settings{
		SMTPHost:           "smtp.example.com",
		SMTPPort:           587,
		SMTPUser:           "billing@example.com",
		SMTPPass:           "secret",
		WhatsAppWebhookURL: "https://hook.example.com/send",
	}
}

func newTestDispatcher(tpls *fakeTemplateRepo, cfg settings.Settings, mailer Mailer, wa WhatsAppSender, log LogRepository) *Dispatcher {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDispatcher(
		logger,
		templates.NewService(tpls),
		settings.NewService(&fakeSettingsRepo{cfg: cfg}),
		mailer,
		wa,
		log,
		nil,
		"https://pay.example.com",
	)
}

func TestDispatchBothChannels(t *testing.T) {
	mailer := &fakeMailer{}
	wa := &fakeWhatsApp{}
	log := &fakeLog{}
	d := newTestDispatcher(&fakeTemplateRepo{}, configured(), mailer, wa, log)

	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	res, err := d.Dispatch(context.Background(), Request{
		SubscriptionID: uuid.New(),
		ClientName:     "Padaria Silva",
		Email:          strPtr("contato@padaria.com"),
		Phone:          strPtr("(11) 98765-4321"),
		ServiceName:    "Gestão de Redes",
		Amount:         1250.50,
		DueDate:        &due,
		Trigger:        templates.TriggerDue,
	})
	require.NoError(t, err)
	require.Equal(t, 2, res.Sent)
	require.Zero(t, res.Failed)

	require.Len(t, mailer.sent, 1)
	require.Equal(t, "contato@padaria.com", mailer.sent[0].To)
	require.Contains(t, mailer.sent[0].Body, "Padaria Silva")
	require.Contains(t, mailer.sent[0].Body, "Gestão de Redes")
	require.Contains(t, mailer.sent[0].Body, "15/09/2026")

	require.Len(t, wa.sent, 1)
	require.Equal(t, "5511987654321", wa.sent[0].Number)

	require.Len(t, log.entries, 2)
	for _, e := range log.entries {
		require.Equal(t, DeliverySent, e.Status)
		require.Equal(t, templates.TriggerDue, e.Trigger)
	}
}

func TestDispatchSkipsUnconfiguredChannels(t *testing.T) {
	mailer := &fakeMailer{}
	wa := &fakeWhatsApp{}
	log := &fakeLog{}
	cfg := configured()
	cfg.WhatsAppWebhookURL = ""
	d := newTestDispatcher(&fakeTemplateRepo{}, cfg, mailer, wa, log)

	res, err := d.Dispatch(context.Background(), Request{
		SubscriptionID: uuid.New(),
		ClientName:     "Ana",
		Email:          strPtr("ana@example.com"),
		Phone:          strPtr("11987654321"),
		ServiceName:    "SEO",
		Amount:         300,
		Trigger:        templates.TriggerReminder,
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Sent)
	require.Empty(t, wa.sent)
}

func TestDispatchMissingContactSkipsChannel(t *testing.T) {
	mailer := &fakeMailer{}
	wa := &fakeWhatsApp{}
	log := &fakeLog{}
	d := newTestDispatcher(&fakeTemplateRepo{}, configured(), mailer, wa, log)

	res, err := d.Dispatch(context.Background(), Request{
		SubscriptionID: uuid.New(),
		ClientName:     "Bruno",
		Phone:          strPtr("11987654321"),
		ServiceName:    "Hosting",
		Amount:         90,
		Trigger:        templates.TriggerOverdue,
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Sent)
	require.Empty(t, mailer.sent)
	require.Len(t, wa.sent, 1)
}

func TestDispatchRecordsFailure(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("connection refused")}
	wa := &fakeWhatsApp{}
	log := &fakeLog{}
	d := newTestDispatcher(&fakeTemplateRepo{}, configured(), mailer, wa, log)

	res, err := d.Dispatch(context.Background(), Request{
		SubscriptionID: uuid.New(),
		ClientName:     "Carla",
		Email:          strPtr("carla@example.com"),
		ServiceName:    "Design",
		Amount:         450,
		Trigger:        templates.TriggerDue,
	})
	require.NoError(t, err)
	require.Zero(t, res.Sent)
	require.Equal(t, 1, res.Failed)

	require.Len(t, log.entries, 1)
	require.Equal(t, DeliveryFailed, log.entries[0].Status)
	require.NotNil(t, log.entries[0].Error)
	require.Contains(t, *log.entries[0].Error, "connection refused")
}

func TestDispatchUsesCustomTemplate(t *testing.T) {
	tpls := &fakeTemplateRepo{}
	_, err := tpls.Create(context.Background(), templates.Template{
		Channel:  templates.ChannelEmail,
		Trigger:  templates.TriggerDue,
		Name:     "Cobrança",
		Subject:  strPtr("Vence hoje: {{servico}}"),
		Content:  "Prezado {{cliente}}, pague {{valor}} via {{link_pagamento}}.",
		IsActive: true,
	})
	require.NoError(t, err)

	mailer := &fakeMailer{}
	d := newTestDispatcher(tpls, configured(), mailer, &fakeWhatsApp{}, &fakeLog{})

	_, err = d.Dispatch(context.Background(), Request{
		SubscriptionID: uuid.New(),
		ClientName:     "Diego",
		Email:          strPtr("diego@example.com"),
		ServiceName:    "Consultoria",
		Amount:         2000,
		Trigger:        templates.TriggerDue,
	})
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	require.Equal(t, "Vence hoje: Consultoria", mailer.sent[0].Subject)
	require.Contains(t, mailer.sent[0].Body, "https://pay.example.com")
}

func TestOverdueFallsBackToDueTemplate(t *testing.T) {
	tpls := &fakeTemplateRepo{}
	_, err := tpls.Create(context.Background(), templates.Template{
		Channel:  templates.ChannelWhatsApp,
		Trigger:  templates.TriggerDue,
		Name:     "Cobrança padrão",
		Content:  "Cobrança: {{servico}} de {{cliente}}",
		IsActive: true,
	})
	require.NoError(t, err)

	wa := &fakeWhatsApp{}
	d := newTestDispatcher(tpls, configured(), &fakeMailer{}, wa, &fakeLog{})

	_, err = d.Dispatch(context.Background(), Request{
		SubscriptionID: uuid.New(),
		ClientName:     "Elisa",
		Phone:          strPtr("21912345678"),
		ServiceName:    "Tráfego Pago",
		Amount:         800,
		Trigger:        templates.TriggerOverdue,
	})
	require.NoError(t, err)
	require.Len(t, wa.sent, 1)
	require.Equal(t, "Cobrança: Tráfego Pago de Elisa", wa.sent[0].Text)
}

func TestTriggerFor(t *testing.T) {
	require.Equal(t, templates.TriggerOverdue, TriggerFor(billing.CycleOverdue))
	require.Equal(t, templates.TriggerDue, TriggerFor(billing.CyclePending))
	require.Equal(t, templates.TriggerDue, TriggerFor(billing.CyclePaid))
}

func TestScheduledTrigger(t *testing.T) {
	cases := []struct {
		name         string
		status       billing.Status
		daysUntilDue int
		want         templates.Trigger
		fire         bool
	}{
		{"reminder two days out", billing.Status{State: billing.CyclePending}, 2, templates.TriggerReminder, true},
		{"due today", billing.Status{State: billing.CyclePending}, 0, templates.TriggerDue, true},
		{"quiet day before due", billing.Status{State: billing.CyclePending}, 5, "", false},
		{"overdue day one", billing.Status{State: billing.CycleOverdue, DaysOverdue: 1}, -1, templates.TriggerOverdue, true},
		{"overdue day seven", billing.Status{State: billing.CycleOverdue, DaysOverdue: 7}, -7, templates.TriggerOverdue, true},
		{"overdue quiet day", billing.Status{State: billing.CycleOverdue, DaysOverdue: 3}, -3, "", false},
		{"already paid", billing.Status{State: billing.CyclePaid}, 0, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, fire := ScheduledTrigger(tc.status, tc.daysUntilDue)
			require.Equal(t, tc.fire, fire)
			if fire {
				require.Equal(t, tc.want, got)
			}
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"(11) 98765-4321":   "5511987654321",
		"11 3456-7890":      "551134567890",
		"+55 11 98765-4321": "5511987654321",
		"5511987654321":     "5511987654321",
		"987654321":         "987654321",
		"":                  "",
	}
	for in, want := range cases {
		require.Equal(t, want, NormalizePhone(in), "input %q", in)
	}
}
