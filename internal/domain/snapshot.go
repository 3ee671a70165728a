package domain

import "time"

// Observation es el estado de un mercado dentro de un snapshot.
// Price es nil cuando el provider no publicó precio para el leg YES.
type Observation struct {
	Slug      string
	Question  string
	Price     *float64 // precio YES ∈ [0,1]
	Volume    float64
	Liquidity float64
}

// Snapshot es una captura inmutable del universo de mercados trackeados.
// El store retiene todos los snapshots pero solo los dos más recientes
// importan para la detección de señales.
type Snapshot struct {
	CapturedAt time.Time
	Markets    []Observation
}

// Find devuelve la observación del slug dado, o nil si no está en el snapshot.
func (s Snapshot) Find(slug string) *Observation {
	for i := range s.Markets {
		if s.Markets[i].Slug == slug {
			return &s.Markets[i]
		}
	}
	return nil
}

// SignalDirection es el sentido del movimiento de precio entre dos snapshots.
type SignalDirection string

const (
	DirectionUp   SignalDirection = "UP"
	DirectionDown SignalDirection = "DOWN"
	DirectionFlat SignalDirection = "FLAT"
)

// Signal es el resultado de comparar un mercado entre dos snapshots.
// Derivado, nunca source of truth: solo se persiste el último scan.
type Signal struct {
	Slug         string
	Question     string
	OldPrice     float64
	NewPrice     float64
	PriceDelta   float64
	VolumeRatio  float64
	Direction    SignalDirection
	IsPriceSpike bool
	IsVolSpike   bool
	Volume       float64
	Liquidity    float64
}
