package engine

import (
	"math"
	"sort"

	"polysim/config"
	"polysim/internal/domain"
)

// DetectSignals compara los dos snapshots más recientes y marca anomalías
// por mercado. Un mercado entra en el output solo si al menos un flag de
// spike es true. Mercados ausentes en cualquiera de los dos snapshots se
// saltan en silencio: sin señal, sin error.
func DetectSignals(cfg config.EngineConfig, older, newer domain.Snapshot) []domain.Signal {
	prev := make(map[string]*domain.Observation, len(older.Markets))
	for i := range older.Markets {
		prev[older.Markets[i].Slug] = &older.Markets[i]
	}

	var signals []domain.Signal
	for _, obs := range newer.Markets {
		old, ok := prev[obs.Slug]
		if !ok || old.Price == nil || obs.Price == nil {
			continue
		}

		delta := *obs.Price - *old.Price

		var volRatio float64
		if old.Volume > 0 {
			volRatio = obs.Volume / old.Volume
		}

		priceSpike := math.Abs(delta) > cfg.PriceSpikeThreshold
		volSpike := old.Volume > 0 && volRatio-1 > cfg.VolumeSpikeRatio
		if !priceSpike && !volSpike {
			continue
		}

		dir := domain.DirectionFlat
		switch {
		case delta > 0:
			dir = domain.DirectionUp
		case delta < 0:
			dir = domain.DirectionDown
		}

		signals = append(signals, domain.Signal{
			Slug:         obs.Slug,
			Question:     obs.Question,
			OldPrice:     *old.Price,
			NewPrice:     *obs.Price,
			PriceDelta:   delta,
			VolumeRatio:  volRatio,
			Direction:    dir,
			IsPriceSpike: priceSpike,
			IsVolSpike:   volSpike,
			Volume:       obs.Volume,
			Liquidity:    obs.Liquidity,
		})
	}

	return signals
}

// RankSignals ordena las señales por |priceDelta| descendente, estable.
func RankSignals(signals []domain.Signal) {
	sort.SliceStable(signals, func(i, j int) bool {
		return math.Abs(signals[i].PriceDelta) > math.Abs(signals[j].PriceDelta)
	})
}
