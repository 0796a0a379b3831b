package composer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MichalMitros/steam-deals-digest/internal/platform/models"
	"github.com/samber/lo"
)

// DefaultUnitCapacity is the default number of items per output unit.
const DefaultUnitCapacity = 100

const (
	headerTitle        = "⏰ 本日終了のSteamセールまとめ"
	hashtag            = "#Steamセール"
	continuationMarker = "続きます↓"
	unknownExpiry      = "不明"
	noDealsMessage     = "（条件を満たすセールは見つかりませんでした）"
	noEligibleMessage  = "該当ディールはありましたが、Steam側のappid解決に失敗しました。"

	clockLayout = "01/02 15:04"
)

// Option is custom configuration of Composer.
type Option func(c *Composer)

// Composer renders ranked items into bounded-size posts.
type Composer struct {
	unitCapacity int
	location     *time.Location
	storeURL     string
}

// NewComposer returns new Composer rendering timestamps in location.
func NewComposer(location *time.Location, ops ...Option) *Composer {
	cmp := &Composer{
		unitCapacity: DefaultUnitCapacity,
		location:     location,
		storeURL:     "https://store.steampowered.com",
	}

	for _, op := range ops {
		op(cmp)
	}

	return cmp
}

// Compose splits ranked into contiguous units of at most unitCapacity items,
// preserving order, and renders each into a post. When ranked is empty a
// single unit explains the outcome: dealsFound distinguishes "nothing in the
// window" from "deals found but nothing resolved or eligible".
func (c *Composer) Compose(ranked []models.RankedItem, window models.Window, dealsFound bool) []models.OutputUnit {
	if len(ranked) == 0 {
		message := noDealsMessage
		if dealsFound {
			message = noEligibleMessage
		}

		lines := append(c.headerLines(window), message, hashtag)

		return []models.OutputUnit{{
			SequenceIndex: 0,
			IsFinal:       true,
			RenderedText:  strings.Join(lines, "\n"),
		}}
	}

	windowLabel := window.Start.In(c.location).Format("MST")

	chunks := lo.Chunk(ranked, c.unitCapacity)
	units := make([]models.OutputUnit, 0, len(chunks))

	for ix, chunk := range chunks {
		isFinal := ix == len(chunks)-1

		lines := c.headerLines(window)
		for _, item := range chunk {
			lines = append(lines, c.itemLines(item, windowLabel)...)
			lines = append(lines, "")
		}
		lines = append(lines, hashtag)
		if !isFinal {
			lines = append(lines, continuationMarker)
		}

		units = append(units, models.OutputUnit{
			SequenceIndex: ix,
			IsFinal:       isFinal,
			RenderedText:  strings.Join(lines, "\n"),
		})
	}

	return units
}

func (c *Composer) headerLines(window models.Window) []string {
	start := window.Start.In(c.location)
	end := window.End.In(c.location)

	return []string{
		headerTitle,
		fmt.Sprintf("（%s → %s %s）", start.Format(clockLayout), end.Format(clockLayout), start.Format("MST")),
		"",
	}
}

// itemLines renders one item. The zone label comes from the rendered time
// itself, so it stays right across DST switches; windowLabel covers items
// without an expiry.
func (c *Composer) itemLines(item models.RankedItem, windowLabel string) []string {
	expiry := unknownExpiry
	label := windowLabel
	if item.Expiry != nil {
		local := item.Expiry.In(c.location)
		expiry = local.Format(clockLayout)
		label = local.Format("MST")
	}

	return []string{
		fmt.Sprintf("🎮 %s", item.Name),
		fmt.Sprintf("🛒 ¥%s ➡️ ¥%s （-%d%%）",
			formatYen(item.PriceInitial), formatYen(item.PriceFinal), item.DiscountPercent),
		fmt.Sprintf("⏳ 終了予定(%s): %s", label, expiry),
		fmt.Sprintf("🔗 %s/app/%d/", c.storeURL, item.AppID),
	}
}

// formatYen renders a minor-unit price as whole yen with thousands
// separators.
func formatYen(minor int) string {
	digits := strconv.Itoa(minor / 100)

	var rendered strings.Builder
	for ix, digit := range digits {
		if ix > 0 && (len(digits)-ix)%3 == 0 {
			rendered.WriteByte(',')
		}
		rendered.WriteRune(digit)
	}

	return rendered.String()
}

// WithUnitCapacity sets the items-per-unit bound.
func WithUnitCapacity(capacity int) Option {
	return func(c *Composer) {
		c.unitCapacity = capacity
	}
}

// WithStoreURL sets the canonical store link base.
func WithStoreURL(storeURL string) Option {
	return func(c *Composer) {
		c.storeURL = strings.TrimRight(storeURL, "/")
	}
}
