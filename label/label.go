// Package label holds the closed set of currencies the ECB reference feeds are
// accepted for. Anything outside of it is rejected at the parsing boundary.
package label

import (
	"errors"
	"fmt"
	"strings"
)

var ErrCurrencyNotFound = errors.New("currency symbol is not supported")

// Symbol is an ISO 4217 style three letter code
type Symbol string

func (s Symbol) String() string {
	return string(s)
}

// Valid reports whether the symbol belongs to the recognized universe
func (s Symbol) Valid() bool {
	_, ok := Currencies[s]
	return ok
}

const (
	EUR Symbol = "EUR"
	USD Symbol = "USD"
	JPY Symbol = "JPY"
	BGN Symbol = "BGN"
	CYP Symbol = "CYP"
	CZK Symbol = "CZK"
	DKK Symbol = "DKK"
	EEK Symbol = "EEK"
	GBP Symbol = "GBP"
	HUF Symbol = "HUF"
	LTL Symbol = "LTL"
	LVL Symbol = "LVL"
	MTL Symbol = "MTL"
	PLN Symbol = "PLN"
	ROL Symbol = "ROL"
	RON Symbol = "RON"
	SEK Symbol = "SEK"
	SIT Symbol = "SIT"
	SKK Symbol = "SKK"
	CHF Symbol = "CHF"
	ISK Symbol = "ISK"
	NOK Symbol = "NOK"
	HRK Symbol = "HRK"
	TRL Symbol = "TRL"
	TRY Symbol = "TRY"
	AUD Symbol = "AUD"
	BRL Symbol = "BRL"
	CAD Symbol = "CAD"
	CNY Symbol = "CNY"
	HKD Symbol = "HKD"
	IDR Symbol = "IDR"
	ILS Symbol = "ILS"
	INR Symbol = "INR"
	KRW Symbol = "KRW"
	MXN Symbol = "MXN"
	MYR Symbol = "MYR"
	NZD Symbol = "NZD"
	PHP Symbol = "PHP"
	SGD Symbol = "SGD"
	THB Symbol = "THB"
	ZAR Symbol = "ZAR"
)

// Root is the currency the ECB publishes every reference rate against
const Root = EUR

type Currency struct {
	Symbol Symbol
	Name   string
}

// Universe lists the recognized currencies in a stable order. RUB is left out on
// purpose: the ECB suspended its publication.
var Universe = []Symbol{
	EUR, USD, JPY, BGN, CYP, CZK, DKK, EEK, GBP, HUF, LTL, LVL, MTL, PLN, ROL, RON, SEK, SIT, SKK, CHF,
	ISK, NOK, HRK, TRL, TRY, AUD, BRL, CAD, CNY, HKD, IDR, ILS, INR, KRW, MXN, MYR, NZD, PHP, SGD, THB,
	ZAR,
}

var Currencies = map[Symbol]Currency{
	EUR: {Symbol: EUR, Name: "Euro"},
	USD: {Symbol: USD, Name: "US dollar"},
	JPY: {Symbol: JPY, Name: "Japanese yen"},
	BGN: {Symbol: BGN, Name: "Bulgarian lev"},
	CYP: {Symbol: CYP, Name: "Cyprus pound"},
	CZK: {Symbol: CZK, Name: "Czech koruna"},
	DKK: {Symbol: DKK, Name: "Danish krone"},
	EEK: {Symbol: EEK, Name: "Estonian kroon"},
	GBP: {Symbol: GBP, Name: "Pound sterling"},
	HUF: {Symbol: HUF, Name: "Hungarian forint"},
	LTL: {Symbol: LTL, Name: "Lithuanian litas"},
	LVL: {Symbol: LVL, Name: "Latvian lats"},
	MTL: {Symbol: MTL, Name: "Maltese lira"},
	PLN: {Symbol: PLN, Name: "Polish zloty"},
	ROL: {Symbol: ROL, Name: "Romanian leu (old)"},
	RON: {Symbol: RON, Name: "Romanian leu"},
	SEK: {Symbol: SEK, Name: "Swedish krona"},
	SIT: {Symbol: SIT, Name: "Slovenian tolar"},
	SKK: {Symbol: SKK, Name: "Slovak koruna"},
	CHF: {Symbol: CHF, Name: "Swiss franc"},
	ISK: {Symbol: ISK, Name: "Icelandic krona"},
	NOK: {Symbol: NOK, Name: "Norwegian krone"},
	HRK: {Symbol: HRK, Name: "Croatian kuna"},
	TRL: {Symbol: TRL, Name: "Turkish lira (old)"},
	TRY: {Symbol: TRY, Name: "Turkish lira"},
	AUD: {Symbol: AUD, Name: "Australian dollar"},
	BRL: {Symbol: BRL, Name: "Brazilian real"},
	CAD: {Symbol: CAD, Name: "Canadian dollar"},
	CNY: {Symbol: CNY, Name: "Chinese yuan renminbi"},
	HKD: {Symbol: HKD, Name: "Hong Kong dollar"},
	IDR: {Symbol: IDR, Name: "Indonesian rupiah"},
	ILS: {Symbol: ILS, Name: "Israeli shekel"},
	INR: {Symbol: INR, Name: "Indian rupee"},
	KRW: {Symbol: KRW, Name: "South Korean won"},
	MXN: {Symbol: MXN, Name: "Mexican peso"},
	MYR: {Symbol: MYR, Name: "Malaysian ringgit"},
	NZD: {Symbol: NZD, Name: "New Zealand dollar"},
	PHP: {Symbol: PHP, Name: "Philippine peso"},
	SGD: {Symbol: SGD, Name: "Singapore dollar"},
	THB: {Symbol: THB, Name: "Thai baht"},
	ZAR: {Symbol: ZAR, Name: "South African rand"},
}

// Parse normalizes s and returns the matching Symbol. Codes outside of the
// universe return ErrCurrencyNotFound.
func Parse(s string) (Symbol, error) {
	sym := Symbol(strings.ToUpper(strings.TrimSpace(s)))
	if !sym.Valid() {
		return "", fmt.Errorf("%w: %q", ErrCurrencyNotFound, s)
	}

	return sym, nil
}
