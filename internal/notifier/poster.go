package notifier

import (
	"context"
	"fmt"
	"io"

	"github.com/MichalMitros/steam-deals-digest/internal/platform/models"
	"github.com/rs/zerolog"
)

// Poster publishes one text post, optionally as a reply, returning the
// created post's id.
type Poster interface {
	Post(ctx context.Context, text, inReplyTo string) (string, error)
}

// PostThread publishes the units in order as a reply thread: every unit after
// the first replies to the previous one. The first hard failure aborts the
// thread; already-posted units stay up.
func PostThread(ctx context.Context, poster Poster, units []models.OutputUnit, logger zerolog.Logger) error {
	previousID := ""

	for _, unit := range units {
		postID, err := poster.Post(ctx, unit.RenderedText, previousID)
		if err != nil {
			return fmt.Errorf("can't post unit %d: %w", unit.SequenceIndex, err)
		}

		logger.Info().
			Int("part", unit.SequenceIndex+1).
			Int("total", len(units)).
			Str("postId", postID).
			Msg("unit posted")

		previousID = postID
	}

	return nil
}

// Preview writes the units to w in order, each preceded by its part index.
func Preview(w io.Writer, units []models.OutputUnit) {
	for ix, unit := range units {
		fmt.Fprintf(w, "--- Part %d/%d ---\n%s\n", ix+1, len(units), unit.RenderedText)
	}
}
