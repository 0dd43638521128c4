package ipn

import (
	"fmt"
	"strings"
	"time"
)

const payPalDateLayout = "15:04:05 Jan 2, 2006"

var payPalZones = map[string]*time.Location{
	"PST": time.FixedZone("PST", -8*60*60),
	"PDT": time.FixedZone("PDT", -7*60*60),
	"UTC": time.UTC,
	"GMT": time.UTC,
	"Z":   time.UTC,
}

// parsePaymentDate reads payment_date values such as
// "08:32:39 Mar 15, 2026 PDT". PayPal stamps them in Pacific time. ISO
// timestamps are accepted too; those without a zone are read in loc.
func parsePaymentDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("parsePaymentDate: empty")
	}

	if i := strings.LastIndexByte(s, ' '); i > 0 {
		if zone, ok := payPalZones[strings.ToUpper(s[i+1:])]; ok {
			if t, err := time.ParseInLocation(payPalDateLayout, s[:i], zone); err == nil {
				return t, nil
			}
		}
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(time.DateTime, s, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("parsePaymentDate: unrecognised format %q", s)
}

// calendarKey renders t as year, month without padding and two-digit day,
// the key used to tell a subscription's first payment from a renewal.
func calendarKey(t time.Time, loc *time.Location) string {
	t = t.In(loc)
	return fmt.Sprintf("%d%d%02d", t.Year(), int(t.Month()), t.Day())
}
