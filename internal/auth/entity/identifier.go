package entity

import (
	"errors"
	"strings"
	"unicode"
)

// ErrMalformedIdentifier is returned when an identifier cannot be parsed.
var ErrMalformedIdentifier = errors.New("malformed identifier")

type IdentifierKind string

const (
	IdentifierKindEmail IdentifierKind = "email"
	IdentifierKindPhone IdentifierKind = "phone"
)

func (k IdentifierKind) String() string {
	return string(k)
}

func (k IdentifierKind) IsValid() bool {
	return k == IdentifierKindEmail || k == IdentifierKindPhone
}

// Identifier is the canonical form of an email address or phone number.
type Identifier struct {
	Kind  IdentifierKind
	Value string
}

// ParseIdentifier classifies raw as email (contains "@") or phone and
// canonicalizes it. Emails are trimmed and lowercased; phones lose all
// whitespace. No further format validation happens here.
func ParseIdentifier(raw string) (Identifier, error) {
	if raw == "" {
		return Identifier{}, ErrMalformedIdentifier
	}

	if strings.Contains(raw, "@") {
		return Identifier{Kind: IdentifierKindEmail, Value: strings.ToLower(strings.TrimSpace(raw))}, nil
	}

	phone := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if phone == "" {
		return Identifier{}, ErrMalformedIdentifier
	}

	return Identifier{Kind: IdentifierKindPhone, Value: phone}, nil
}
