package modelstesting

import (
	"math/rand"
	"time"

	"github.com/MichalMitros/steam-deals-digest/internal/platform/models"
	"github.com/go-faker/faker/v4"
	"github.com/samber/lo"
)

// FakeDeal returns models.CatalogDeal with fake data and an expiry
// within one day from now.
func FakeDeal(ops ...func(d *models.CatalogDeal)) models.CatalogDeal {
	deal := models.CatalogDeal{
		CatalogID: faker.UUIDHyphenated(),
		Kind:      models.KindGame,
		Expiry:    lo.ToPtr(time.Now().UTC().Add(time.Duration(rand.Intn(86400)) * time.Second)),
	}

	for _, op := range ops {
		op(&deal)
	}

	return deal
}

// FakeEnriched returns models.EnrichedItem with fake data and a
// price pair respecting PriceFinal <= PriceInitial.
func FakeEnriched(ops ...func(i *models.EnrichedItem)) models.EnrichedItem {
	initial := (rand.Intn(100) + 10) * 100
	discount := rand.Intn(91)
	item := models.EnrichedItem{
		AppID:           rand.Intn(1_000_000) + 1,
		Name:            faker.Word(),
		Kind:            models.KindGame,
		PriceInitial:    initial,
		PriceFinal:      initial * (100 - discount) / 100,
		DiscountPercent: discount,
		Expiry:          lo.ToPtr(time.Now().UTC().Add(time.Duration(rand.Intn(86400)) * time.Second)),
		ReviewCount:     rand.Intn(5000),
	}

	for _, op := range ops {
		op(&item)
	}

	return item
}

// FakeRanked returns models.RankedItem built from FakeEnriched.
func FakeRanked(ops ...func(i *models.EnrichedItem)) models.RankedItem {
	return models.RankedItem{EnrichedItem: FakeEnriched(ops...)}
}
