package feed_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kondyan2022/solar-green/feed"
)

func TestFixedFeed(t *testing.T) {
	f := feed.NewFixed(big.NewInt(3456000000), 6)

	rate, dec, err := f.LatestRate()
	require.NoError(t, err)
	assert.Equal(t, "3456000000", rate.String())
	assert.Equal(t, uint8(6), dec)

	// The returned rate is a copy; mutating it must not poison the feed.
	rate.SetInt64(0)
	rate2, _, err := f.LatestRate()
	require.NoError(t, err)
	assert.Equal(t, "3456000000", rate2.String())
}

func TestFixedFeedRejectsNonPositiveRate(t *testing.T) {
	f := feed.NewFixed(big.NewInt(0), 6)
	_, _, err := f.LatestRate()
	assert.ErrorIs(t, err, feed.ErrInvalidRate)
}

func TestSettableFeed(t *testing.T) {
	f := feed.NewSettable(8, big.NewInt(100))

	rate, dec, err := f.LatestRate()
	require.NoError(t, err)
	assert.Equal(t, "100", rate.String())
	assert.Equal(t, uint8(8), dec)

	f.Set(big.NewInt(250))
	rate, _, err = f.LatestRate()
	require.NoError(t, err)
	assert.Equal(t, "250", rate.String())
}

func TestSettableFeedRejectsNonPositiveRate(t *testing.T) {
	f := feed.NewSettable(8, big.NewInt(100))
	f.Set(big.NewInt(-1))
	_, _, err := f.LatestRate()
	assert.ErrorIs(t, err, feed.ErrInvalidRate)
}
