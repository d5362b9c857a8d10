// Package publish pushes reconciled leads to the CRM and texts the
// surviving household.
package publish

import (
	"context"
	"strings"
	"sync/atomic"
	"text/template"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/estate-leads/internal/model"
	"github.com/sells-group/estate-leads/internal/names"
)

// CRM is the contact and deal store leads are written to.
type CRM interface {
	// SearchContact returns the id of the contact with exactly this first
	// and last name, or "" when none exists.
	SearchContact(ctx context.Context, first, last string) (string, error)
	CreateContact(ctx context.Context, c Contact) (string, error)
	CreateDeal(ctx context.Context, contactID string, d Deal) (string, error)
}

// Messenger sends one SMS.
type Messenger interface {
	Send(ctx context.Context, to, body string) error
}

// DefaultTemplate is the outreach message. It is rendered with Message.
const DefaultTemplate = `I am deeply sorry to hear about the loss of {{.FirstName}}. My heart goes out to you during this difficult time. ` +
	`In moments like these, managing practical matters can feel overwhelming. ` +
	`If you are considering selling your property, I am here to help in any way I can. Please don't hesitate to reach out.` +
	"\n\nWith Heartfelt Sympathy,\n{{.Sender}}"

// Message is the data an SMS template is rendered with.
type Message struct {
	FirstName string
	Spouse    string
	Address   string
	Sender    string
}

// ParseTemplate compiles an SMS template.
func ParseTemplate(text string) (*template.Template, error) {
	t, err := template.New("sms").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, eris.Wrap(err, "publish: parse sms template")
	}
	return t, nil
}

// Publisher writes leads to the CRM and sends outreach texts.
type Publisher struct {
	crm         CRM
	sms         Messenger
	tmpl        *template.Template
	sender      string
	concurrency int
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithTemplate replaces DefaultTemplate.
func WithTemplate(t *template.Template) Option {
	return func(p *Publisher) {
		p.tmpl = t
	}
}

// WithSender sets the signature rendered into texts.
func WithSender(name string) Option {
	return func(p *Publisher) {
		p.sender = name
	}
}

// WithConcurrency caps how many leads are published at once. Zero means
// no cap.
func WithConcurrency(n int) Option {
	return func(p *Publisher) {
		p.concurrency = n
	}
}

// New creates a Publisher.
func New(crm CRM, sms Messenger, opts ...Option) *Publisher {
	p := &Publisher{crm: crm, sms: sms}
	for _, opt := range opts {
		opt(p)
	}
	if p.tmpl == nil {
		p.tmpl = template.Must(ParseTemplate(DefaultTemplate))
	}
	return p
}

// Publish writes one lead and returns the counters it produced. Leads that
// are not publishable are skipped silently.
func (p *Publisher) Publish(ctx context.Context, lead model.EnrichedLead) model.Counters {
	var c model.Counters
	if !lead.Publishable() {
		return c
	}
	log := zap.L().With(zap.String("person", lead.Person))

	first, last := names.FirstLast(lead.Person)
	contactID, err := p.crm.SearchContact(ctx, first, last)
	if err != nil {
		log.Warn("publish: contact search failed, skipping lead", zap.Error(err))
		return c
	}

	if contactID == "" {
		c.TextsSent = p.text(ctx, lead)

		contactID, err = p.crm.CreateContact(ctx, ContactFor(lead, min(c.TextsSent, 1)))
		if err != nil {
			log.Error("publish: create contact failed", zap.Error(err))
			return c
		}
		c.ContactsCreated++
	} else {
		log.Info("publish: contact exists, adding deal only", zap.String("contact_id", contactID))
	}

	if _, err := p.crm.CreateDeal(ctx, contactID, DealFor(lead)); err != nil {
		log.Error("publish: create deal failed", zap.Error(err))
		return c
	}
	c.DealsCreated++
	return c
}

// PublishAll publishes every lead and folds their counters. Leads that map
// to the same CRM contact are published one after another on a single
// goroutine, so the second sees the contact the first created.
func (p *Publisher) PublishAll(ctx context.Context, leads []model.EnrichedLead) model.Counters {
	results := make([]model.Counters, len(leads))

	var g errgroup.Group
	if p.concurrency > 0 {
		g.SetLimit(p.concurrency)
	}
	for _, group := range groupByContact(leads) {
		g.Go(func() error {
			for _, i := range group {
				results[i] = p.Publish(ctx, leads[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	var total model.Counters
	for _, r := range results {
		total = total.Add(r)
	}
	return total
}

// groupByContact returns lead indexes grouped by the first and last name the
// CRM searches on, in first-seen order.
func groupByContact(leads []model.EnrichedLead) [][]int {
	var groups [][]int
	seen := make(map[string]int, len(leads))
	for i, lead := range leads {
		first, last := names.FirstLast(lead.Person)
		key := strings.ToLower(first + "\x00" + last)
		g, ok := seen[key]
		if !ok {
			g = len(groups)
			seen[key] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}

// Render returns the outreach text for lead.
func (p *Publisher) Render(lead model.EnrichedLead) (string, error) {
	first, _ := names.FirstLast(lead.Person)
	var b strings.Builder
	err := p.tmpl.Execute(&b, Message{
		FirstName: first,
		Spouse:    lead.Spouse,
		Address:   lead.GoogleAddress,
		Sender:    p.sender,
	})
	if err != nil {
		return "", eris.Wrap(err, "publish: render sms")
	}
	return b.String(), nil
}

// text sends the outreach message to every cleaned number and returns how
// many sends succeeded.
func (p *Publisher) text(ctx context.Context, lead model.EnrichedLead) int {
	log := zap.L().With(zap.String("person", lead.Person))

	body, err := p.Render(lead)
	if err != nil {
		log.Error("publish: sms not sent", zap.Error(err))
		return 0
	}

	var (
		sent atomic.Int64
		g    errgroup.Group
	)
	for _, n := range lead.CleanedNumbers {
		g.Go(func() error {
			if err := p.sms.Send(ctx, E164(n), body); err != nil {
				log.Warn("publish: sms failed", zap.String("to", n), zap.Error(err))
				return nil
			}
			sent.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	log.Info("publish: texts sent", zap.Int64("sent", sent.Load()), zap.Int("numbers", len(lead.CleanedNumbers)))
	return int(sent.Load())
}
