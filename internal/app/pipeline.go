package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"booking_bot/internal/adapters/observability"
	"booking_bot/internal/domain"
)

type Prompts struct {
	Generate string
	Extract  string
	Apology  string // fmt template with one %s for the location
}

func (p Prompts) withDefaults() Prompts {
	if p.Generate == "" {
		p.Generate = DefaultGeneratePrompt
	}
	if p.Extract == "" {
		p.Extract = DefaultExtractPrompt
	}
	if !validApology(p.Apology) {
		p.Apology = DefaultApologyTemplate
	}
	return p
}

// validApology accepts templates whose only formatting verb is a single %s.
// Literal "%%" is allowed.
func validApology(tmpl string) bool {
	verbs := 0
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '%' {
			continue
		}
		if i+1 < len(tmpl) && tmpl[i+1] == '%' {
			i++
			continue
		}
		if i+1 >= len(tmpl) || tmpl[i+1] != 's' {
			return false
		}
		verbs++
		i++
	}
	return verbs == 1
}

type PipelineOptions struct {
	Prompts          Prompts
	MaxLocationRunes int
	CallTimeout      time.Duration // per external call
	Deadline         time.Duration // whole pipeline
}

// Pipeline runs generate -> extract -> resolve -> notify for one booking request.
type Pipeline struct {
	llm      domain.Completer
	venues   *VenueService
	notifier *Notifier
	opt      PipelineOptions
}

func NewPipeline(llm domain.Completer, venues *VenueService, notifier *Notifier, opt PipelineOptions) *Pipeline {
	opt.Prompts = opt.Prompts.withDefaults()
	if opt.MaxLocationRunes <= 0 {
		opt.MaxLocationRunes = domain.DefaultMaxLocationRunes
	}
	if opt.CallTimeout <= 0 {
		opt.CallTimeout = 20 * time.Second
	}
	if opt.Deadline <= 0 {
		opt.Deadline = 50 * time.Second
	}
	return &Pipeline{llm: llm, venues: venues, notifier: notifier, opt: opt}
}

// call bounds a single external call.
func (p *Pipeline) call(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.opt.CallTimeout)
}

// GenerateBookingMessage asks the LLM for the Russian booking message.
func (p *Pipeline) GenerateBookingMessage(ctx context.Context, userText string) (string, error) {
	cctx, cancel := p.call(ctx)
	defer cancel()

	out, err := p.llm.Complete(cctx, p.opt.Prompts.Generate, userText)
	if err != nil {
		return "", domain.Upstream("llm", fmt.Errorf("generate booking message: %w", err))
	}
	return out, nil
}

// ExtractLocationName asks the LLM for the venue name mentioned in the message.
// An unusable answer is not an error; check the result's validity.
func (p *Pipeline) ExtractLocationName(ctx context.Context, generated string) (domain.LocationName, error) {
	cctx, cancel := p.call(ctx)
	defer cancel()

	out, err := p.llm.Complete(cctx, p.opt.Prompts.Extract, generated)
	if err != nil {
		return domain.LocationName{}, domain.Upstream("llm", fmt.Errorf("extract location: %w", err))
	}
	return domain.ParseLocationName(out, p.opt.MaxLocationRunes), nil
}

// SearchLocation resolves a venue name through the venue service.
func (p *Pipeline) SearchLocation(ctx context.Context, name string) (domain.VenueInfo, bool, error) {
	cctx, cancel := p.call(ctx)
	defer cancel()
	return p.venues.SearchLocation(cctx, name)
}

// Handle runs the whole pipeline. Any returned error wraps *domain.UpstreamError,
// except domain.ErrEmptyMessage for blank input.
func (p *Pipeline) Handle(ctx context.Context, req domain.BookingRequest) (domain.BookingResult, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return domain.BookingResult{}, domain.ErrEmptyMessage
	}

	ctx, cancel := context.WithTimeout(ctx, p.opt.Deadline)
	defer cancel()
	l := zerolog.Ctx(ctx)
	start := time.Now()

	res, err := p.run(ctx, msg)
	if err != nil {
		res.Outcome = domain.OutcomeUpstreamError
	}
	observability.ObservePipeline(res.Outcome)

	ev := l.Info()
	if err != nil {
		ev = l.Error().Err(err)
	}
	ev.Str("outcome", res.Outcome).
		Str("location", res.Location).
		Int("responses", len(res.Responses)).
		Dur("duration", time.Since(start)).
		Msg("booking pipeline finished")
	return res, err
}

func (p *Pipeline) run(ctx context.Context, msg string) (domain.BookingResult, error) {
	generated, err := p.GenerateBookingMessage(ctx, msg)
	if err != nil {
		return domain.BookingResult{}, err
	}

	loc, err := p.ExtractLocationName(ctx, generated)
	if err != nil {
		return domain.BookingResult{}, err
	}

	name, ok := loc.Value()
	if !ok {
		zerolog.Ctx(ctx).Warn().
			Str("raw", observability.Truncate(loc.String(), 120)).
			Msg("extracted location rejected")
		p.venues.RecordMiss(ctx, loc.String(), MissInvalidLocation)
		return p.apology(loc.String(), domain.OutcomeInvalidLocation), nil
	}

	venue, found, err := p.SearchLocation(ctx, name)
	if err != nil {
		return domain.BookingResult{Location: name}, err
	}
	if !found {
		return p.apology(name, domain.OutcomeVenueNotFound), nil
	}

	res := domain.BookingResult{Outcome: domain.OutcomeOK, Location: name, Venue: &venue}
	if venue.PhoneNumber != nil {
		res.Responses = append(res.Responses, domain.ChatResponse{
			Response: fmt.Sprintf(phoneLineTemplate, name, *venue.PhoneNumber),
			Kind:     domain.KindPhone,
		})
	} else {
		res.Responses = append(res.Responses, domain.ChatResponse{
			Response: fmt.Sprintf(noPhoneLineTemplate, name),
			Kind:     domain.KindPhone,
		})
	}
	res.Responses = append(res.Responses, domain.ChatResponse{Response: generated, Kind: domain.KindMessage})

	// only a dialable number may reach the notifier
	if _, dialable := domain.NormalizePhone(deref(venue.PhoneNumber)); !dialable || !p.notifier.Enabled() {
		return res, nil
	}

	nctx, cancel := p.call(ctx)
	defer cancel()
	n := p.notifier.Notify(nctx, *venue.PhoneNumber, generated)
	res.Notification = &n

	if n.Link != "" {
		res.Responses = append(res.Responses, domain.ChatResponse{Response: n.Link, Kind: domain.KindLink})
	}
	if n.Attempted {
		line := deliveredLine
		if !n.Delivered {
			line = deliveryFailedLine
		}
		res.Responses = append(res.Responses, domain.ChatResponse{Response: line, Kind: domain.KindDelivery})
	}
	return res, nil
}

func (p *Pipeline) apology(location, outcome string) domain.BookingResult {
	return domain.BookingResult{
		Outcome:  outcome,
		Location: location,
		Responses: []domain.ChatResponse{{
			Response: fmt.Sprintf(p.opt.Prompts.Apology, location),
			Kind:     domain.KindApology,
		}},
	}
}
