package domain

import "errors"

// Error taxonomy compartida por engine, adapters y CLI.
// Los comandos batch tratan estos errores como skip-and-count;
// los comandos de un solo item los propagan al exit code.
var (
	// ErrMarketNotFound indica que el provider no devolvió nada para el slug.
	ErrMarketNotFound = errors.New("market not found")

	// ErrInvalidPrice indica un precio fuera de (0, 1) o datos de outcome no parseables.
	ErrInvalidPrice = errors.New("invalid price")

	// ErrInsufficientBalance indica que el amount excede el cash del ledger.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidStrategy indica un nombre de estrategia fuera del set cerrado.
	ErrInvalidStrategy = errors.New("invalid strategy")

	// ErrUnresolvedMarket indica que el mercado aún no cerró ni resolvió.
	// No es un error real: resolve lo salta y reintenta en la próxima invocación.
	ErrUnresolvedMarket = errors.New("market not yet resolved")

	// ErrStoreConflict indica que otro proceso escribió el portfolio entre
	// nuestro read y nuestro write. El comando falla sin corromper estado.
	ErrStoreConflict = errors.New("portfolio modified by concurrent writer")
)
