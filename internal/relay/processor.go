// Package relay runs the post-response half of the webhook: normalize has
// already happened, the provider already got its 200, and everything here is
// observable only through logs and metrics.
package relay

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/atzlabs/zadarma-atz-relay/internal/atz"
	"github.com/atzlabs/zadarma-atz-relay/internal/call"
	"github.com/atzlabs/zadarma-atz-relay/internal/observability/metrics"
	"github.com/atzlabs/zadarma-atz-relay/internal/owner"
	"github.com/atzlabs/zadarma-atz-relay/pkg/logging"
)

// crmClient is the slice of the ATZ client the pipeline needs.
type crmClient interface {
	GetOrCreateCandidateByPhone(ctx context.Context, params atz.CreateCandidateParams) (*atz.Candidate, error)
	AppendToCustomField(ctx context.Context, idOrSlug, fieldKey, line string, ownerID int) (*atz.Candidate, error)
	CreateCallActivity(ctx context.Context, note atz.ActivityNote) (map[string]any, error)
}

// Processor drives the CRM side effects for one finished call.
type Processor struct {
	crm         crmClient
	owners      *owner.Resolver
	fieldKey    string
	useActivity bool
	logger      *logging.Logger
	metrics     *metrics.RelayMetrics
	now         func() time.Time
}

// Config wires a Processor.
type Config struct {
	CRM      crmClient // nil disables all CRM side effects
	Owners   *owner.Resolver
	FieldKey string
	// UseActivity selects the activity-note strategy instead of the
	// custom-field append. The two are mutually exclusive.
	UseActivity bool
	Logger      *logging.Logger
	Metrics     *metrics.RelayMetrics
}

func NewProcessor(cfg Config) *Processor {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Owners == nil {
		cfg.Owners = owner.NewResolver(nil, 0)
	}
	return &Processor{
		crm:         cfg.CRM,
		owners:      cfg.Owners,
		fieldKey:    cfg.FieldKey,
		useActivity: cfg.UseActivity,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		now:         time.Now,
	}
}

// Process runs the pipeline for one normalized event. It never returns an
// error and never panics out: the HTTP response is long gone, so failures
// end here, in the logs.
func (p *Processor) Process(ctx context.Context, rec call.Record) {
	log := p.logger.With("job_id", uuid.NewString(), "event", rec.Event, "call_id", rec.CallID)
	defer func() {
		if r := recover(); r != nil {
			log.Error("relay pipeline panicked", "panic", r)
		}
	}()

	if !rec.IsFinished() {
		log.Debug("ignoring non-final call event")
		p.metrics.ObserveEvent(rec.Event, "ignored")
		return
	}
	if p.crm == nil {
		log.Info("CRM disabled or token missing, skipping ATZ actions")
		p.metrics.ObserveEvent(rec.Event, "skipped")
		return
	}

	start := p.now()
	outcome := p.run(ctx, log, rec)
	p.metrics.ObserveEvent(rec.Event, outcome)
	p.metrics.ObservePipeline(outcome, p.now().Sub(start).Seconds())
}

func (p *Processor) run(ctx context.Context, log *logging.Logger, rec call.Record) string {
	phone := rec.ExternalPhone()
	if phone == "" {
		log.Warn("no external phone to match, skipping upsert")
		return "skipped"
	}

	ownerID, _ := p.owners.Resolve(rec.Internal)

	cand, err := p.crm.GetOrCreateCandidateByPhone(ctx, atz.CreateCandidateParams{
		Phone:   phone,
		OwnerID: ownerID,
		CallID:  rec.CallID,
	})
	if err != nil {
		log.Error("candidate upsert failed", "phone", phone, "error", err)
		p.metrics.ObserveCRMRequest("upsert", "error")
		return "error"
	}
	p.metrics.ObserveCRMRequest("upsert", "ok")
	ref := cand.Ref()
	log.Info("candidate upserted", "candidate", ref, "phone", phone, "owner_id", ownerID)
	if ref == "" {
		log.Warn("candidate has no id, slug or uuid, cannot record call log")
		return "error"
	}

	line := call.SummaryLine(rec, p.now())
	if p.useActivity {
		if _, err := p.crm.CreateCallActivity(ctx, atz.NewActivityNote(ref, rec, line)); err != nil {
			log.Error("call activity creation failed", "candidate", ref, "error", err)
			p.metrics.ObserveCRMRequest("activity", "error")
			return "error"
		}
		p.metrics.ObserveCRMRequest("activity", "ok")
		return "processed"
	}

	if p.fieldKey == "" {
		log.Warn("no custom field key configured, skipping call log append")
		return "processed"
	}
	if _, err := p.crm.AppendToCustomField(ctx, ref, p.fieldKey, line, ownerID); err != nil {
		log.Error("custom field append failed", "candidate", ref, "error", err)
		p.metrics.ObserveCRMRequest("append", "error")
		return "error"
	}
	p.metrics.ObserveCRMRequest("append", "ok")
	return "processed"
}
