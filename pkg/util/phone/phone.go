// Package phone normalizes subscriber phone numbers.
package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var ErrInvalid = errors.New("invalid phone number")

// Number is a parsed phone number.
type Number struct {
	// National is the national significant number, digits only. It is the
	// stored form of a patient phone.
	National string
	// E164 is the dialable international form.
	E164 string
}

// Parse accepts local or international input. Local numbers are read in
// region, an ISO 3166 code such as "IN".
func Parse(raw, region string) (Number, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Number{}, ErrInvalid
	}
	if region == "" {
		region = "IN"
	}
	num, err := phonenumbers.Parse(raw, strings.ToUpper(region))
	if err != nil {
		return Number{}, errors.Join(ErrInvalid, err)
	}
	if !phonenumbers.IsPossibleNumber(num) {
		return Number{}, ErrInvalid
	}
	return Number{
		National: phonenumbers.GetNationalSignificantNumber(num),
		E164:     phonenumbers.Format(num, phonenumbers.E164),
	}, nil
}

// LastDigits returns the last n digits of raw, ignoring separators. Shorter
// inputs are returned whole.
func LastDigits(raw string, n int) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	d := b.String()
	if len(d) <= n {
		return d
	}
	return d[len(d)-n:]
}
