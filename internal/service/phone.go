package service

import (
	"regexp"
	"strings"

	"royal-kart/internal/model"
)

var (
	mobilePattern  = regexp.MustCompile(`^[6-9]\d{9}$`)
	phoneSeparator = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

// NormalisePhone reduces an Indian mobile number to its ten digit form.
func NormalisePhone(raw string) (string, error) {
	p := phoneSeparator.Replace(strings.TrimSpace(raw))

	switch {
	case strings.HasPrefix(p, "+91"):
		p = p[3:]
	case len(p) == 12 && strings.HasPrefix(p, "91"):
		p = p[2:]
	case len(p) == 11 && strings.HasPrefix(p, "0"):
		p = p[1:]
	}

	if !mobilePattern.MatchString(p) {
		return "", model.ErrInvalidPhone
	}
	return p, nil
}
