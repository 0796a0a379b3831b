package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/MichalMitros/steam-deals-digest/internal/platform/models"
	"github.com/MichalMitros/steam-deals-digest/internal/storefront"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

//go:generate mockery --name Scanner --filename scanner.go
//go:generate mockery --name Resolver --filename resolver.go
//go:generate mockery --name Enricher --filename enricher.go
//go:generate mockery --name Reviewer --filename reviewer.go

// Scanner finds catalog deals expiring inside a window.
type Scanner interface {
	Scan(ctx context.Context, window models.Window) ([]models.CatalogDeal, error)
}

// Resolver translates catalog ids into storefront app ids.
type Resolver interface {
	Resolve(ctx context.Context, catalogIDs []string) (map[string]int, error)
}

// Enricher fetches storefront metadata per app id.
type Enricher interface {
	Details(ctx context.Context, appIDs []int) (map[int]storefront.Details, error)
}

// Reviewer fetches localized review counts per app id.
type Reviewer interface {
	ReviewCounts(ctx context.Context, appIDs []int) map[int]int
}

// Ranker filters and orders enriched items.
type Ranker interface {
	Rank(items []models.EnrichedItem) []models.RankedItem
}

// Composer renders ranked items into output units.
type Composer interface {
	Compose(ranked []models.RankedItem, window models.Window, dealsFound bool) []models.OutputUnit
}

// Clock provides times.
type Clock interface {
	// Now returns current time.
	Now() time.Time
}

// dayStartHour is the local hour the daily deal window opens at.
const dayStartHour = 9

// Option is custom configuration of Builder.
type Option func(b *Builder)

// Result is one pipeline run's output.
type Result struct {
	Window models.Window
	Units  []models.OutputUnit
	Stats  models.RunStats
}

// Builder drives the fetch-aggregate-rank pipeline: scan the catalog, resolve
// app ids, enrich, rank, compose. Every stage's output is fully materialized
// before the next stage starts.
type Builder struct {
	scanner  Scanner
	resolver Resolver
	enricher Enricher
	reviewer Reviewer
	ranker   Ranker
	composer Composer

	clock    Clock
	location *time.Location
	logger   zerolog.Logger
}

// NewBuilder returns new Builder. The location defines the daily window and
// defaults to UTC.
func NewBuilder(
	scanner Scanner,
	resolver Resolver,
	enricher Enricher,
	reviewer Reviewer,
	rnk Ranker,
	cmp Composer,
	ops ...Option,
) *Builder {
	bld := &Builder{
		scanner:  scanner,
		resolver: resolver,
		enricher: enricher,
		reviewer: reviewer,
		ranker:   rnk,
		composer: cmp,
		clock:    systemClock{},
		location: time.UTC,
		logger:   zerolog.Nop(),
	}

	for _, op := range ops {
		op(bld)
	}

	return bld
}

// Build runs the pipeline once and returns the rendered output units.
// Per-item gaps (unresolvable, unservable, unpriced apps) are dropped
// silently; only scanner or resolver failures abort the run.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	logger := b.logger.With().Str("runId", uuid.NewString()).Logger()

	window := windowFor(b.clock.Now(), b.location)
	logger.Info().
		Time("windowStart", window.Start).
		Time("windowEnd", window.End).
		Msg("digest run started")

	started := time.Now()

	deals, err := b.scanner.Scan(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("can't scan catalog: %w", err)
	}
	scanned := time.Now()

	appIDs, expiryByApp, err := b.resolveApps(ctx, deals)
	if err != nil {
		return nil, fmt.Errorf("can't resolve app ids: %w", err)
	}
	resolved := time.Now()

	enriched, err := b.enrichApps(ctx, appIDs, expiryByApp)
	if err != nil {
		return nil, fmt.Errorf("can't enrich apps: %w", err)
	}
	enrichedAt := time.Now()

	ranked := b.ranker.Rank(enriched)
	units := b.composer.Compose(ranked, window, len(deals) > 0)

	stats := models.RunStats{
		DealsFound:    len(deals),
		ResolvedApps:  len(appIDs),
		EnrichedApps:  len(enriched),
		EligibleItems: len(ranked),
		OutputUnits:   len(units),
	}

	logger.Info().
		Dur("scanDuration", scanned.Sub(started)).
		Dur("resolveDuration", resolved.Sub(scanned)).
		Dur("enrichDuration", enrichedAt.Sub(resolved)).
		Int("deals", stats.DealsFound).
		Int("resolved", stats.ResolvedApps).
		Int("enriched", stats.EnrichedApps).
		Int("eligible", stats.EligibleItems).
		Int("units", stats.OutputUnits).
		Msg("digest run finished")

	return &Result{Window: window, Units: units, Stats: stats}, nil
}

// resolveApps maps deals to app ids, keeping the deals' order, dropping
// unresolvable ids and binding each app to its deal's expiry (first deal
// wins for apps reached by several deals).
func (b *Builder) resolveApps(
	ctx context.Context,
	deals []models.CatalogDeal,
) ([]int, map[int]*time.Time, error) {
	if len(deals) == 0 {
		return nil, nil, nil
	}

	catalogIDs := lo.Map(deals, func(d models.CatalogDeal, _ int) string { return d.CatalogID })

	resolved, err := b.resolver.Resolve(ctx, catalogIDs)
	if err != nil {
		return nil, nil, err
	}

	appIDs := make([]int, 0, len(resolved))
	expiryByApp := make(map[int]*time.Time, len(resolved))
	for _, deal := range deals {
		appID, ok := resolved[deal.CatalogID]
		if !ok {
			continue
		}
		if _, seen := expiryByApp[appID]; seen {
			continue
		}
		appIDs = append(appIDs, appID)
		expiryByApp[appID] = deal.Expiry
	}

	return appIDs, expiryByApp, nil
}

// enrichApps merges storefront metadata and review counts into enriched
// items, keeping appIDs order and dropping apps without usable metadata or
// that turn out not to be games.
func (b *Builder) enrichApps(
	ctx context.Context,
	appIDs []int,
	expiryByApp map[int]*time.Time,
) ([]models.EnrichedItem, error) {
	if len(appIDs) == 0 {
		return nil, nil
	}

	details, err := b.enricher.Details(ctx, appIDs)
	if err != nil {
		return nil, err
	}

	items := make([]models.EnrichedItem, 0, len(details))
	itemIDs := make([]int, 0, len(details))
	for _, appID := range appIDs {
		data, ok := details[appID]
		if !ok || data.Kind != models.KindGame {
			continue
		}
		items = append(items, models.EnrichedItem{
			AppID:           appID,
			Name:            data.Name,
			Kind:            data.Kind,
			IsFree:          data.IsFree,
			PriceInitial:    data.PriceInitial,
			PriceFinal:      data.PriceFinal,
			DiscountPercent: data.DiscountPercent,
			Expiry:          expiryByApp[appID],
		})
		itemIDs = append(itemIDs, appID)
	}

	counts := b.reviewer.ReviewCounts(ctx, itemIDs)
	for ix := range items {
		items[ix].ReviewCount = counts[items[ix].AppID]
	}

	return items, nil
}

// windowFor is the daily deal window containing now: the target day's
// dayStartHour in loc through the same hour next day.
func windowFor(now time.Time, loc *time.Location) models.Window {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), dayStartHour, 0, 0, 0, loc)

	return models.Window{Start: start, End: start.Add(24 * time.Hour)}
}

// WithClock sets Builder's custom Clock.
func WithClock(c Clock) Option {
	return func(b *Builder) {
		b.clock = c
	}
}

// WithLocation sets the timezone the daily window is anchored in.
func WithLocation(loc *time.Location) Option {
	return func(b *Builder) {
		b.location = loc
	}
}

// WithLogger sets Builder's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}
