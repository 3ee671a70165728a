package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polysim/config"
	"polysim/internal/domain"
)

func fp(v float64) *float64 { return &v }

func snap(at time.Time, markets ...domain.Observation) domain.Snapshot {
	return domain.Snapshot{CapturedAt: at, Markets: markets}
}

func TestDetectSignals_PriceSpike(t *testing.T) {
	cfg := config.DefaultEngine()
	t0 := time.Now()

	older := snap(t0,
		domain.Observation{Slug: "fed-cut", Price: fp(0.30), Volume: 1000},
		domain.Observation{Slug: "quiet", Price: fp(0.50), Volume: 1000},
	)
	newer := snap(t0.Add(time.Hour),
		domain.Observation{Slug: "fed-cut", Price: fp(0.45), Volume: 1100},
		domain.Observation{Slug: "quiet", Price: fp(0.52), Volume: 1050},
	)

	signals := DetectSignals(cfg, older, newer)

	require.Len(t, signals, 1)
	sig := signals[0]
	assert.Equal(t, "fed-cut", sig.Slug)
	assert.InDelta(t, 0.15, sig.PriceDelta, 1e-9)
	assert.True(t, sig.IsPriceSpike)
	assert.False(t, sig.IsVolSpike)
	assert.Equal(t, domain.DirectionUp, sig.Direction)
}

func TestDetectSignals_VolumeSpike(t *testing.T) {
	cfg := config.DefaultEngine()
	t0 := time.Now()

	older := snap(t0, domain.Observation{Slug: "m", Price: fp(0.50), Volume: 100})
	newer := snap(t0, domain.Observation{Slug: "m", Price: fp(0.50), Volume: 400})

	signals := DetectSignals(cfg, older, newer)

	require.Len(t, signals, 1)
	// ratio 4.0 → ratio-1 = 3.0 > 2.0
	assert.True(t, signals[0].IsVolSpike)
	assert.False(t, signals[0].IsPriceSpike)
	assert.InDelta(t, 4.0, signals[0].VolumeRatio, 1e-9)
	assert.Equal(t, domain.DirectionFlat, signals[0].Direction)
}

func TestDetectSignals_ZeroOldVolume(t *testing.T) {
	cfg := config.DefaultEngine()
	t0 := time.Now()

	// volumen anterior 0 → ratio 0, nunca vol spike
	older := snap(t0, domain.Observation{Slug: "m", Price: fp(0.30), Volume: 0})
	newer := snap(t0, domain.Observation{Slug: "m", Price: fp(0.45), Volume: 500})

	signals := DetectSignals(cfg, older, newer)

	require.Len(t, signals, 1)
	assert.False(t, signals[0].IsVolSpike)
	assert.Equal(t, 0.0, signals[0].VolumeRatio)
}

func TestDetectSignals_MissingMarketsSilentlySkipped(t *testing.T) {
	cfg := config.DefaultEngine()
	t0 := time.Now()

	older := snap(t0, domain.Observation{Slug: "only-old", Price: fp(0.30), Volume: 100})
	newer := snap(t0, domain.Observation{Slug: "only-new", Price: fp(0.80), Volume: 100})

	assert.Empty(t, DetectSignals(cfg, older, newer))
}

func TestDetectSignals_NilPriceSkipped(t *testing.T) {
	cfg := config.DefaultEngine()
	t0 := time.Now()

	older := snap(t0, domain.Observation{Slug: "m", Price: nil, Volume: 100})
	newer := snap(t0, domain.Observation{Slug: "m", Price: fp(0.80), Volume: 1000})

	assert.Empty(t, DetectSignals(cfg, older, newer))
}

func TestRankSignals(t *testing.T) {
	signals := []domain.Signal{
		{Slug: "small", PriceDelta: 0.11},
		{Slug: "big", PriceDelta: -0.30},
		{Slug: "mid", PriceDelta: 0.20},
	}
	RankSignals(signals)

	assert.Equal(t, "big", signals[0].Slug)
	assert.Equal(t, "mid", signals[1].Slug)
	assert.Equal(t, "small", signals[2].Slug)
}
