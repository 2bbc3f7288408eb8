package core

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// FormatCurrency renders m in rupees with Indian digit grouping
// (₹1,23,456.5). Trailing fractional zeros are dropped.
func FormatCurrency(m Money) string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := cents / 100
	frac := cents % 100

	out := sign + "₹" + groupIndian(whole)
	switch {
	case frac == 0:
	case frac%10 == 0:
		out += "." + string(rune('0'+frac/10))
	default:
		out += "." + string(rune('0'+frac/10)) + string(rune('0'+frac%10))
	}
	return out
}

func groupIndian(n int64) string {
	digits := []byte(strconv.FormatInt(n, 10))
	if len(digits) <= 3 {
		return string(digits)
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{string(head[len(head)-2:])}, parts...)
		head = head[:len(head)-2]
	}
	if len(head) > 0 {
		parts = append([]string{string(head)}, parts...)
	}
	return strings.Join(parts, ",") + "," + string(tail)
}

// FormatShortDate renders "Jan 02".
func FormatShortDate(d Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("Jan 02")
}

// FormatMonth renders "January 2006".
func FormatMonth(d Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("January 2006")
}

// FormatDateTime renders "Jan 02, 2006 15:04", or the date alone when t is
// not a valid HH:MM:SS time.
func FormatDateTime(d Date, t string) string {
	if d.IsZero() {
		return ""
	}
	if !ValidTime(t) {
		return d.Format("Jan 02, 2006")
	}
	return d.Format("Jan 02, 2006") + " " + t[:5]
}

// Initials returns up to two upper-case initials, "?" for an empty name.
func Initials(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "?"
	}
	first, _ := utf8.DecodeRuneInString(fields[0])
	if len(fields) == 1 {
		return strings.ToUpper(string(first))
	}
	last, _ := utf8.DecodeRuneInString(fields[len(fields)-1])
	return strings.ToUpper(string(first) + string(last))
}

// Truncate shortens s to max runes, appending "...".
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "..."
}
