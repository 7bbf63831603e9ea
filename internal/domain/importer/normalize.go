package importer

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParseState distinguishes "field absent", "field unparseable" and
// "field legitimately present". The numeric value always degrades to
// zero on the first two, matching the source spreadsheets' tolerance,
// but callers that need the distinction can inspect the state.
type ParseState int

const (
	StateOK ParseState = iota
	StateMissing
	StateInvalid
)

// Amount is a normalized currency cell.
type Amount struct {
	Value decimal.Decimal
	State ParseState
}

// Quantity is a normalized integer cell.
type Quantity struct {
	Value int
	State ParseState
}

var brlReplacer = strings.NewReplacer(
	"R$", "",
	" ", "", // non-breaking space
	" ", "",
)

// ParseBRL normalizes a locale-formatted currency cell such as
// "R$ 1.234,56" into a decimal amount. Missing or unparseable cells
// degrade to zero, never an error.
func ParseBRL(cell string) Amount {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return Amount{Value: decimal.Zero, State: StateMissing}
	}

	// Brazilian format: dots separate thousands, the comma is the
	// decimal mark. "R$ 1.500" is one thousand five hundred.
	s := brlReplacer.Replace(cell)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	value, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{Value: decimal.Zero, State: StateInvalid}
	}
	return Amount{Value: value, State: StateOK}
}

// ParseQuantity normalizes a numeric-or-blank cell into an integer,
// truncating fractional values. Missing or unparseable cells degrade
// to zero.
func ParseQuantity(cell string) Quantity {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return Quantity{State: StateMissing}
	}

	value, err := decimal.NewFromString(cell)
	if err != nil {
		return Quantity{State: StateInvalid}
	}
	return Quantity{Value: int(value.IntPart()), State: StateOK}
}

// Portuguese month lexicon, including the unaccented março variant
// that appears in some exports.
var ptMonths = map[string]time.Month{
	"janeiro":   time.January,
	"fevereiro": time.February,
	"março":     time.March,
	"marco":     time.March,
	"abril":     time.April,
	"maio":      time.May,
	"junho":     time.June,
	"julho":     time.July,
	"agosto":    time.August,
	"setembro":  time.September,
	"outubro":   time.October,
	"novembro":  time.November,
	"dezembro":  time.December,
}

// ParseDate normalizes a spreadsheet date cell. Supported shapes:
//
//	05 de março de 2024 14:30   (Mercado Livre long form)
//	31/12/2023
//	2023-12-31
//
// Any parse failure yields (zero, false); a missing date never blocks
// the sale record.
func ParseDate(cell string) (time.Time, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, false
	}

	if t, ok := parseLongPortuguese(cell); ok {
		return t, true
	}

	for _, layout := range []string{"02/01/2006", "2006-01-02"} {
		if t, err := time.Parse(layout, cell); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// parseLongPortuguese handles "<day> de <month> de <year> <HH:MM>".
// Token positions are fixed: 0=day, 2=month name, 4=year, 5=time.
func parseLongPortuguese(cell string) (time.Time, bool) {
	tokens := strings.Fields(strings.ToLower(cell))
	if len(tokens) != 6 {
		return time.Time{}, false
	}
	if tokens[1] != "de" || tokens[3] != "de" {
		return time.Time{}, false
	}

	month, ok := ptMonths[tokens[2]]
	if !ok {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(tokens[0])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(tokens[4])
	if err != nil {
		return time.Time{}, false
	}
	clock, err := time.Parse("15:04", tokens[5])
	if err != nil {
		return time.Time{}, false
	}

	return time.Date(
		year, month, day,
		clock.Hour(), clock.Minute(), 0, 0, time.UTC,
	), true
}
