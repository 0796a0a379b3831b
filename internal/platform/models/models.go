package models

import "time"

// DealKind is the catalog's classification of a deal's subject.
type DealKind string

// Deal kinds recognized by the pipeline. Anything that is not a standalone
// game (DLC, bundles, packs) is KindOther and is dropped during the scan.
const (
	KindGame  DealKind = "game"
	KindOther DealKind = "other"
)

// Window is the inclusive expiry window a scan targets.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window, boundaries included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// CatalogDeal is one deal entry from the catalog service,
// deduplicated by CatalogID before resolution.
type CatalogDeal struct {
	CatalogID string
	Kind      DealKind
	Expiry    *time.Time
}

// EnrichedItem is a resolved item merged with storefront metadata
// and the localized review count.
//
// Prices are kept in the storefront's minor units (1/100 of the display
// currency). PriceFinal <= PriceInitial always holds; for free items both
// are zero.
type EnrichedItem struct {
	AppID           int
	Name            string
	Kind            DealKind
	IsFree          bool
	PriceInitial    int
	PriceFinal      int
	DiscountPercent int
	Expiry          *time.Time
	ReviewCount     int
}

// RankedItem is an EnrichedItem that passed the review-count eligibility
// filter. The ranked sequence the pipeline emits is totally ordered.
type RankedItem struct {
	EnrichedItem
}

// OutputUnit is one rendered post. Units form a reply thread:
// unit i+1 is posted as a reply to unit i.
type OutputUnit struct {
	SequenceIndex int
	IsFinal       bool
	RenderedText  string
}

// RunStats carries per-stage counters of one pipeline run, for logging.
type RunStats struct {
	DealsFound    int
	ResolvedApps  int
	EnrichedApps  int
	EligibleItems int
	OutputUnits   int
}
