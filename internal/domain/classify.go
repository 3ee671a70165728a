package domain

import "strings"

// Clasificadores léxicos de títulos de mercado. Heurísticos a propósito:
// Gamma no expone una categoría fiable, así que filtramos por keywords.

// sportsKeywords marca mercados deportivos / no analíticos.
var sportsKeywords = []string{
	"nba", "nfl", "mlb", "nhl", "ncaa", "ufc", "mma",
	"premier league", "la liga", "serie a", "bundesliga", "ligue 1",
	"champions league", "europa league", "world cup", "super bowl",
	"playoffs", "playoff", "grand slam", "wimbledon", "us open",
	"grand prix", "formula 1", "f1 ", "nascar",
	"heavyweight", "knockout", "touchdown", "home run",
}

// sportsCues acompaña al patrón "vs." para cazar matchups no cubiertos
// por la lista de keywords ("Djokovic vs. Alcaraz: who wins?").
var sportsCues = []string{"win", "beat", "defeat", "game", "match", "series", "fight"}

// IsSportsMarket devuelve true si el título parece un mercado deportivo.
// Se aplica a momentum, contrarian, status_quo y cheap_contracts;
// el proxy de arbitraje opera sin este filtro.
func IsSportsMarket(title string) bool {
	t := strings.ToLower(title)
	for _, kw := range sportsKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	if strings.Contains(t, " vs. ") || strings.Contains(t, " vs ") {
		for _, cue := range sportsCues {
			if strings.Contains(t, cue) {
				return true
			}
		}
	}
	return false
}

// statusQuoCues son los conectores del patrón "will X happen".
var statusQuoCues = []string{
	"happen", "occur", " by ", " before ", " in 20", " this year", " this month",
}

// IsStatusQuoQuestion devuelve true para títulos tipo "will X happen",
// el universo de la estrategia status_quo (apostar a que nada cambia).
func IsStatusQuoQuestion(title string) bool {
	t := strings.ToLower(strings.TrimSpace(title))
	if !strings.HasPrefix(t, "will ") {
		return false
	}
	for _, cue := range statusQuoCues {
		if strings.Contains(t, cue) {
			return true
		}
	}
	return false
}
