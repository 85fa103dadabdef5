package extraction

import (
	"regexp"
	"strconv"
	"strings"
)

// Parsed is the normalized result of pulling structured fields out of raw
// receipt text.
type Parsed struct {
	ShopName    string
	ShopAddress string
	Amount      float64
	Date        string // YYYY-MM-DD when recognized, else raw match
	Items       []Item
}

// Item is one purchased line parsed from the receipt body.
type Item struct {
	Name     string
	Price    float64
	Quantity int
}

var (
	// Total lines like "TOTAL: R 123.45", "Total due 123,45".
	totalPattern = regexp.MustCompile(`(?i)\b(?:grand\s+)?total(?:\s+due)?\s*:?\s*R?\s*(\d+(?:[.,]\d{1,2})?)`)
	// Bare amount, used only on the last lines when no total line matched.
	amountPattern = regexp.MustCompile(`R?\s*(\d+[.,]\d{2})\b`)
	// "Milk 2L   24.99" item lines with an optional "2 x" quantity prefix.
	itemPattern = regexp.MustCompile(`^(?:(\d+)\s*[xX]\s+)?(.+?)\s+R?\s*(\d+[.,]\d{2})\s*$`)

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`),
		regexp.MustCompile(`\b(\d{2})/(\d{2})/(\d{4})\b`),
		regexp.MustCompile(`\b(\d{2})-(\d{2})-(\d{4})\b`),
	}

	addressKeywords = []string{"street", "str", "road", "rd", "avenue", "ave", "drive", "dr", "mall", "centre", "center", "plaza"}

	// Words that mark a priced line as a summary row rather than an item.
	nonItemWords = []string{"total", "subtotal", "sub-total", "vat", "tax", "cash", "change", "card", "balance", "tender", "due", "rounding"}
)

// ParseText extracts receipt fields from raw text with line-oriented
// heuristics. It is the fallback path when the extraction service is
// unavailable, and the cross-check when it is not.
func ParseText(text string) Parsed {
	parsed := Parsed{Items: []Item{}}

	lines := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) == 0 {
		return parsed
	}

	// The shop name is almost always the first printed line.
	parsed.ShopName = lines[0]

	for _, line := range lines[1:] {
		lower := strings.ToLower(line)
		for _, kw := range addressKeywords {
			if containsWord(lower, kw) {
				parsed.ShopAddress = line
				break
			}
		}
		if parsed.ShopAddress != "" {
			break
		}
	}

	// Scan bottom-up so the grand total beats any subtotal above it.
	for i := len(lines) - 1; i >= 0; i-- {
		if m := totalPattern.FindStringSubmatch(lines[i]); m != nil {
			parsed.Amount = parseAmount(m[1])
			break
		}
	}
	if parsed.Amount == 0 {
		tail := lines
		if len(tail) > 5 {
			tail = tail[len(tail)-5:]
		}
		for i := len(tail) - 1; i >= 0; i-- {
			if m := amountPattern.FindStringSubmatch(tail[i]); m != nil {
				parsed.Amount = parseAmount(m[1])
				break
			}
		}
	}

	for _, line := range lines {
		for _, p := range datePatterns {
			if m := p.FindStringSubmatch(line); m != nil {
				parsed.Date = normalizeDate(m)
				break
			}
		}
		if parsed.Date != "" {
			break
		}
	}

	for _, line := range lines[1:] {
		m := itemPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[2])
		if name == "" || isNonItemLine(strings.ToLower(name)) {
			continue
		}
		qty := 1
		if m[1] != "" {
			if q, err := strconv.Atoi(m[1]); err == nil && q > 0 {
				qty = q
			}
		}
		parsed.Items = append(parsed.Items, Item{
			Name:     name,
			Price:    parseAmount(m[3]),
			Quantity: qty,
		})
	}

	return parsed
}

func parseAmount(s string) float64 {
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func isNonItemLine(lower string) bool {
	for _, w := range nonItemWords {
		if containsWord(lower, w) {
			return true
		}
	}
	return false
}

func containsWord(s, word string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isAlnum(s[start-1])
		afterOK := end == len(s) || !isAlnum(s[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// normalizeDate renders a date match as YYYY-MM-DD. Slash and dash forms with
// a trailing year are read day-first.
func normalizeDate(m []string) string {
	if len(m[1]) == 4 {
		return m[1] + "-" + m[2] + "-" + m[3]
	}
	return m[3] + "-" + m[2] + "-" + m[1]
}
