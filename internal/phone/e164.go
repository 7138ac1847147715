package phone

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sharmarobin1121-cmyk/yikyak2/domain"
)

const (
	nationalLength = 10
	minE164Digits  = 8
	maxE164Digits  = 15
)

var (
	separators = strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "", "\t", "")
	digitsOnly = regexp.MustCompile(`^[0-9]+$`)
	countryRE  = regexp.MustCompile(`^[1-9][0-9]{0,2}$`)
)

// Normalizer turns user supplied phone numbers into canonical E.164 strings
type Normalizer struct {
	countryCode string
}

// NewNormalizer creates a normalizer that prefixes national numbers with countryCode
func NewNormalizer(countryCode string) (*Normalizer, error) {
	countryCode = strings.TrimPrefix(strings.TrimSpace(countryCode), "+")
	if !countryRE.MatchString(countryCode) {
		return nil, fmt.Errorf("invalid country calling code %q", countryCode)
	}
	return &Normalizer{countryCode: countryCode}, nil
}

// Canonicalize implements domain.PhoneNormalizer.
//
// Accepted inputs:
//   - "+<digits>" or "00<digits>" with 8 to 15 digits
//   - a 10 digit national number, prefixed with the default country code
//   - the default country code followed by a 10 digit national number
//
// Canonicalize(Canonicalize(x)) == Canonicalize(x) for every accepted x.
func (n *Normalizer) Canonicalize(raw string) (string, error) {
	stripped := separators.Replace(strings.TrimSpace(raw))
	if stripped == "" {
		return "", fmt.Errorf("%w: empty input", domain.ErrInvalidPhoneNumber)
	}

	switch {
	case strings.HasPrefix(stripped, "+"):
		return international(stripped[1:])
	case strings.HasPrefix(stripped, "00"):
		return international(stripped[2:])
	}

	if !digitsOnly.MatchString(stripped) {
		return "", fmt.Errorf("%w: unexpected characters", domain.ErrInvalidPhoneNumber)
	}

	switch {
	case len(stripped) == nationalLength:
		if stripped[0] == '0' {
			return "", fmt.Errorf("%w: national number starts with 0", domain.ErrInvalidPhoneNumber)
		}
		return "+" + n.countryCode + stripped, nil
	case len(stripped) == len(n.countryCode)+nationalLength && strings.HasPrefix(stripped, n.countryCode):
		return international(stripped)
	default:
		return "", fmt.Errorf("%w: unsupported length %d", domain.ErrInvalidPhoneNumber, len(stripped))
	}
}

func international(digits string) (string, error) {
	if !digitsOnly.MatchString(digits) {
		return "", fmt.Errorf("%w: unexpected characters", domain.ErrInvalidPhoneNumber)
	}
	if len(digits) < minE164Digits || len(digits) > maxE164Digits {
		return "", fmt.Errorf("%w: unsupported length %d", domain.ErrInvalidPhoneNumber, len(digits))
	}
	if digits[0] == '0' {
		return "", fmt.Errorf("%w: country code starts with 0", domain.ErrInvalidPhoneNumber)
	}
	return "+" + digits, nil
}
