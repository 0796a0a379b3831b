package notifier_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/MichalMitros/steam-deals-digest/internal/notifier"
	"github.com/MichalMitros/steam-deals-digest/internal/platform/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPoster records posted texts and their reply targets.
type recordingPoster struct {
	failAt  int
	calls   []string
	replies []string
}

func (p *recordingPoster) Post(_ context.Context, text, inReplyTo string) (string, error) {
	if p.failAt > 0 && len(p.calls)+1 == p.failAt {
		return "", assert.AnError
	}

	p.calls = append(p.calls, text)
	p.replies = append(p.replies, inReplyTo)

	return fmt.Sprintf("id-%d", len(p.calls)), nil
}

func units(texts ...string) []models.OutputUnit {
	result := make([]models.OutputUnit, 0, len(texts))
	for ix, text := range texts {
		result = append(result, models.OutputUnit{
			SequenceIndex: ix,
			IsFinal:       ix == len(texts)-1,
			RenderedText:  text,
		})
	}

	return result
}

func TestUnitPostThread(t *testing.T) {
	poster := &recordingPoster{}

	err := notifier.PostThread(context.TODO(), poster, units("one", "two", "three"), zerolog.Nop())

	require.NoError(t, err, "shouldn't return any error")
	assert.Equal(t, []string{"one", "two", "three"}, poster.calls, "should post the units in order")
	assert.Equal(t, []string{"", "id-1", "id-2"}, poster.replies, "each unit should reply to the previous one")
}

func TestUnitPostThreadAbortsOnFailure(t *testing.T) {
	poster := &recordingPoster{failAt: 2}

	err := notifier.PostThread(context.TODO(), poster, units("one", "two", "three"), zerolog.Nop())

	require.ErrorIs(t, err, assert.AnError, "should return posting error")
	assert.Contains(t, err.Error(), "can't post unit 1", "error should name the failed unit")
	assert.Equal(t, []string{"one"}, poster.calls, "shouldn't post past the failure")
}

func TestUnitPreview(t *testing.T) {
	var buf strings.Builder

	notifier.Preview(&buf, units("first body", "second body"))

	output := buf.String()
	assert.Contains(t, output, "--- Part 1/2 ---\nfirst body\n", "should print the first unit with its index")
	assert.Contains(t, output, "--- Part 2/2 ---\nsecond body\n", "should print the second unit with its index")
}
