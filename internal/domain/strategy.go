package domain

import "fmt"

// Strategy identifica una de las cinco estrategias del simulador.
// Es un set cerrado: las estrategias nunca se crean ni destruyen en runtime,
// cada una posee exactamente un ledger.
type Strategy string

const (
	StrategyMomentum   Strategy = "momentum"
	StrategyContrarian Strategy = "contrarian"
	StrategyStatusQuo  Strategy = "status_quo"
	StrategyCheap      Strategy = "cheap_contracts"
	StrategyArb        Strategy = "arb"
)

// AllStrategies es el orden canónico de iteración. Determinista: el mismo
// dataset produce el mismo orden de trades en cada ejecución.
var AllStrategies = [5]Strategy{
	StrategyMomentum,
	StrategyContrarian,
	StrategyStatusQuo,
	StrategyCheap,
	StrategyArb,
}

// ParseStrategy valida un nombre de estrategia del CLI.
func ParseStrategy(name string) (Strategy, error) {
	s := Strategy(name)
	for _, known := range AllStrategies {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStrategy, name)
}

func (s Strategy) String() string { return string(s) }
