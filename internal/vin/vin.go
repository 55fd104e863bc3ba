// Package vin normalizes and checks vehicle identification numbers.
package vin

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	MinLength = 9
	MaxLength = 20

	// minGuessLength is the shortest VIN worth a brand lookup.
	minGuessLength = 11
)

var (
	ErrInvalidLength    = errors.New("vin must be 9 to 20 characters")
	ErrForbiddenLetters = errors.New("vin must not contain I, O or Q")
)

// Cyrillic letters that look like Latin ones and end up in VINs typed on a
// Russian keyboard layout.
var homoglyphs = map[rune]rune{
	'А': 'A', 'В': 'B', 'Е': 'E', 'К': 'K', 'М': 'M', 'Н': 'H',
	'О': 'O', 'Р': 'P', 'С': 'C', 'Т': 'T', 'У': 'Y', 'Х': 'X',
}

var normalizer = transform.Chain(
	norm.NFKC,
	runes.Map(func(r rune) rune {
		r = unicode.ToUpper(r)
		if latin, ok := homoglyphs[r]; ok {
			return latin
		}
		return r
	}),
	runes.Remove(runes.Predicate(func(r rune) bool {
		return !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	})),
)

// Normalize folds s to uppercase ASCII letters and digits only.
func Normalize(s string) string {
	out, _, err := transform.String(normalizer, s)
	if err != nil {
		return ""
	}
	return out
}

// Validate checks a normalized VIN.
func Validate(v string) error {
	if len(v) < MinLength || len(v) > MaxLength {
		return ErrInvalidLength
	}
	if strings.ContainsAny(v, "IOQ") {
		return ErrForbiddenLetters
	}
	return nil
}

// wmiBrands maps world manufacturer identifiers to brand names. It covers the
// common makes only.
var wmiBrands = map[string]string{
	"WVW": "Volkswagen", "WAU": "Audi", "WDB": "Mercedes-Benz", "WME": "Smart", "WBA": "BMW",
	"ZFA": "Fiat", "ZFF": "Ferrari", "ZAM": "Maserati", "ZHW": "Lamborghini",
	"VF1": "Renault", "VF3": "Peugeot", "VF7": "Citroën",
	"VSS": "SEAT", "VSK": "Nissan", "VSX": "Opel",
	"JHM": "Honda", "JHL": "Honda", "JTD": "Toyota", "JT3": "Toyota", "JTM": "Toyota", "JT2": "Toyota",
	"JN1": "Nissan", "JM1": "Mazda", "JMB": "Mitsubishi", "JS1": "Suzuki", "JS2": "Suzuki",
	"SAL": "Land Rover", "SAJ": "Jaguar",
	"1FA": "Ford", "1F2": "Ford", "1G1": "Chevrolet", "1G6": "Cadillac", "1HG": "Honda", "1C4": "Chrysler",
	"2HG": "Honda", "2G1": "Chevrolet",
	"3VW": "Volkswagen", "3FA": "Ford",
	"YV1": "Volvo", "YS3": "Saab",
	"KNM": "Kia", "KNA": "Kia", "KMH": "Hyundai",
	"LJC": "Chevrolet (SGM China)", "LVS": "MG", "LGB": "Dongfeng", "LSG": "SAIC General Motors",
}

// GuessBrand looks up the manufacturer from the first three characters.
func GuessBrand(v string) (string, bool) {
	v = Normalize(v)
	if len(v) < minGuessLength || Validate(v) != nil {
		return "", false
	}
	brand, ok := wmiBrands[v[:3]]
	return brand, ok
}
