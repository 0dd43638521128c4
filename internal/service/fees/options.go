package fees

import (
	"regexp"
	"strings"
)

var (
	listSeparators   = regexp.MustCompile(`[\s,]+`)
	optionSeparators = regexp.MustCompile(`[\r\n,]+`)
	hasDigit         = regexp.MustCompile(`[0-9]`)
)

// parseOptions reads a price_select option string such as
// "Basic|10, Pro|20, 35" into a map from price token to label. Options are
// separated by commas or line breaks. An option without a label uses its
// price as the label; one whose price holds no digits is dropped.
func parseOptions(s string) map[string]string {
	options := make(map[string]string)
	for _, option := range optionSeparators.Split(s, -1) {
		option = strings.TrimSpace(option)
		if option == "" {
			continue
		}
		label, price, found := strings.Cut(option, "|")
		label = strings.TrimSpace(label)
		price = strings.TrimSpace(price)
		if !found {
			price = label
		}
		if !hasDigit.MatchString(price) {
			continue
		}
		options[price] = label
	}
	return options
}

// parseList splits a submitted selection on commas and whitespace.
func parseList(s string) []string {
	var out []string
	for _, token := range listSeparators.Split(s, -1) {
		if token != "" {
			out = append(out, token)
		}
	}
	return out
}

// selectedTokens returns the price tokens posted for a price_select field.
// A single value may carry a comma separated list; repeated values are
// taken one token each.
func selectedTokens(values []string) []string {
	if len(values) == 1 {
		return parseList(values[0])
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
