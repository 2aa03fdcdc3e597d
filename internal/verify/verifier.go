// Package verify is the pipeline orchestrator. It is the only package
// that knows every stage: cache, shortcuts, catalog fan-out, evidence
// aggregation, the decision engine, and the result formatter.
package verify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/nameclear/nameclear/internal/cache"
	"github.com/nameclear/nameclear/internal/decision"
	"github.com/nameclear/nameclear/internal/evidence"
	"github.com/nameclear/nameclear/internal/format"
	"github.com/nameclear/nameclear/internal/shortcut"
	"github.com/nameclear/nameclear/internal/similarity"
	"github.com/nameclear/nameclear/internal/source"
	"github.com/nameclear/nameclear/internal/uniqueness"
)

const healthCheckTimeout = 5 * time.Second

// Options configures a Verifier. Registry, Cache, and Logger are
// required; the shortcut collaborators are optional and skipped when nil.
type Options struct {
	Registry      *source.Registry
	Cache         *cache.Cache
	Logger        *slog.Logger
	EasterEggs    shortcut.EasterEggLookup
	FamousArtists shortcut.FamousArtistLookup
	Suggestions   shortcut.SuggestionGenerator
	Timeouts      map[source.Name]time.Duration
}

// Verifier runs the verification pipeline end to end.
type Verifier struct {
	registry *source.Registry
	cache    *cache.Cache
	engine   *decision.Engine
	agg      *evidence.Aggregator
	eggs     shortcut.EasterEggLookup
	famous   shortcut.FamousArtistLookup
	suggest  shortcut.SuggestionGenerator
	timeouts map[source.Name]time.Duration
	logger   *slog.Logger
	group    singleflight.Group
}

func New(opts Options) *Verifier {
	logger := opts.Logger.With(slog.String("component", "verifier"))
	return &Verifier{
		registry: opts.Registry,
		cache:    opts.Cache,
		engine:   decision.NewEngine(opts.Logger),
		agg:      evidence.New(opts.Logger),
		eggs:     opts.EasterEggs,
		famous:   opts.FamousArtists,
		suggest:  opts.Suggestions,
		timeouts: opts.Timeouts,
		logger:   logger,
	}
}

// Verify is the sole public entry point. Identical concurrent requests
// collapse into one pipeline run.
func (v *Verifier) Verify(ctx context.Context, req Request) (format.Result, error) {
	if err := req.Validate(); err != nil {
		return format.Result{}, err
	}

	logger := v.logger.With(
		slog.String("request_id", uuid.NewString()),
		slog.String("name", req.Name),
		slog.String("entity", string(req.Entity)))

	// A source allow list produces partial evidence, so those runs
	// bypass the shared cache entirely.
	restricted := len(req.Sources) > 0

	if !req.SkipCache && !restricted {
		if r, ok := v.cache.Get(req.Entity, req.Name); ok {
			logger.Debug("cache hit")
			return r, nil
		}
	}

	flightKey := cache.Key(req.Entity, req.Name)
	for _, n := range req.Sources {
		flightKey += "|" + string(n)
	}

	val, err, shared := v.group.Do(flightKey, func() (any, error) {
		return v.run(ctx, logger, req)
	})
	if err != nil {
		return format.Result{}, err
	}
	if shared {
		logger.Debug("joined in-flight verification")
	}
	return val.(format.Result), nil
}

func (v *Verifier) run(ctx context.Context, logger *slog.Logger, req Request) (format.Result, error) {
	start := time.Now()

	if !req.SkipShortcuts {
		if v.eggs != nil {
			if c, ok := v.eggs.Lookup(req.Name, req.Entity); ok {
				logger.Info("curated delight hit")
				return format.FromCanned(req.Name, req.Entity, c), nil
			}
		}

		if v.famous != nil {
			if fm, ok := v.famous.Lookup(req.Name, req.Entity); ok {
				logger.Info("famous artist hit", slog.String("artist", fm.Match.Artist))
				return v.famousResult(req, fm), nil
			}
		}
	}

	perSource := v.fanOut(ctx, logger, req)
	agg := v.agg.Aggregate(req.Name, req.Entity, perSource)
	dec := v.decide(logger, req.Entity, agg)

	alternatives, links := v.suggestions(req, dec.Outcome)
	result := format.Build(req.Name, req.Entity, dec, agg, nil, alternatives, links)
	uniq := uniqueness.Evaluate(req.Name, req.Genre)
	result.Uniqueness = &uniq

	if len(req.Sources) == 0 && v.cache.Set(req.Entity, req.Name, result, dec.CacheTTL) {
		logger.Debug("result cached", slog.Duration("ttl", dec.CacheTTL))
	}
	logger.Info("verification complete",
		slog.String("outcome", string(dec.Outcome)),
		slog.Float64("confidence", dec.Confidence),
		slog.Duration("elapsed", time.Since(start)))
	return result, nil
}

// fanOut queries every registered catalog concurrently. Each branch gets
// its own timeout and writes only its own slot; a panicking adapter is
// recorded as a failed source instead of taking the request down.
func (v *Verifier) fanOut(ctx context.Context, logger *slog.Logger, req Request) map[source.Name]source.Evidence {
	var sources []source.Source
	for _, src := range v.registry.All() {
		if req.allowsSource(src.Name()) {
			sources = append(sources, src)
		}
	}
	slots := make([]source.Evidence, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src source.Source) {
			defer wg.Done()
			start := time.Now()
			defer func() {
				if r := recover(); r != nil {
					logger.Error("adapter panicked",
						slog.String("source", string(src.Name())),
						slog.Any("panic", r))
					slots[i] = source.FailedEvidence(src.Name(), src.ReliabilityWeight(),
						time.Since(start), fmt.Errorf("adapter panic: %v", r))
				}
			}()

			branchCtx, cancel := context.WithTimeout(ctx, v.timeoutFor(src.Name()))
			defer cancel()

			matches, total, err := src.Search(branchCtx, req.Name, req.Entity)
			elapsed := time.Since(start)
			if err != nil {
				logger.Warn("source query failed",
					slog.String("source", string(src.Name())),
					slog.String("error", err.Error()),
					slog.Duration("elapsed", elapsed))
				slots[i] = source.FailedEvidence(src.Name(), src.ReliabilityWeight(), elapsed, err)
				return
			}
			slots[i] = source.BuildEvidence(src.Name(), src.ReliabilityWeight(),
				req.Name, req.Entity, matches, total, elapsed)
		}(i, src)
	}
	wg.Wait()

	perSource := make(map[source.Name]source.Evidence, len(sources))
	for i, src := range sources {
		perSource[src.Name()] = slots[i]
	}
	return perSource
}

// decide shields the caller from a panicking rule chain.
func (v *Verifier) decide(logger *slog.Logger, entity similarity.EntityType, agg evidence.Aggregated) (dec decision.Decision) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("decision engine panicked", slog.Any("panic", r))
			dec = v.engine.InternalError(fmt.Errorf("decision panic: %v", r))
		}
	}()
	return v.engine.Evaluate(entity, agg, false)
}

func (v *Verifier) famousResult(req Request, fm shortcut.FamousMatch) format.Result {
	agg := v.agg.Aggregate(req.Name, req.Entity, nil)
	dec := v.engine.Evaluate(req.Entity, agg, true)

	result := format.Build(req.Name, req.Entity, dec, agg, &fm, fm.Alternatives, fm.Links)
	uniq := uniqueness.Evaluate(req.Name, req.Genre)
	result.Uniqueness = &uniq

	v.cache.Set(req.Entity, req.Name, result, dec.CacheTTL)
	return result
}

func (v *Verifier) suggestions(req Request, outcome decision.Outcome) ([]string, []source.Link) {
	if v.suggest == nil {
		return nil, nil
	}
	if outcome != decision.OutcomeTaken && outcome != decision.OutcomeSimilar {
		return nil, nil
	}
	return v.suggest.Alternatives(req.Name, req.Entity), v.suggest.Links(req.Name, req.Entity)
}

func (v *Verifier) timeoutFor(name source.Name) time.Duration {
	if d, ok := v.timeouts[name]; ok {
		return d
	}
	if d, ok := source.DefaultTimeouts[name]; ok {
		return d
	}
	return 8 * time.Second
}

// SourceStatus describes one registered catalog for the sources endpoint.
type SourceStatus struct {
	ID                source.Name `json:"id"`
	Name              string      `json:"name"`
	ReliabilityWeight float64     `json:"reliability_weight"`
	RequiresAuth      bool        `json:"requires_auth"`
	Healthy           bool        `json:"healthy"`
	Error             string      `json:"error,omitempty"`
}

// SourceHealth pings every registered catalog with a short timeout.
func (v *Verifier) SourceHealth(ctx context.Context) []SourceStatus {
	sources := v.registry.All()
	statuses := make([]SourceStatus, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src source.Source) {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
			defer cancel()

			s := SourceStatus{
				ID:                src.Name(),
				Name:              src.Name().DisplayName(),
				ReliabilityWeight: src.ReliabilityWeight(),
				RequiresAuth:      src.RequiresAuth(),
				Healthy:           true,
			}
			if err := src.HealthCheck(checkCtx); err != nil {
				s.Healthy = false
				s.Error = err.Error()
			}
			statuses[i] = s
		}(i, src)
	}
	wg.Wait()
	return statuses
}
