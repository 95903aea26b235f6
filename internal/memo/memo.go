package memo

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hippocampus-web3/thorchain-indexer/internal/midgard"
)

// BaseAsset is the asset that gates and pays for memo actions.
const BaseAsset = "THOR.RUNE"

// BaseUnitsPerRune converts whole RUNE to base units.
const BaseUnitsPerRune = 100_000_000

// MaxFeeBps caps listing fees at 100% in basis points.
const MaxFeeBps = 10_000

var sanitizePolicy = bluemonday.StrictPolicy()

// Tokenize splits a colon-delimited memo into trimmed tokens.
func Tokenize(memo string) []string {
	parts := strings.Split(memo, ":")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// ParseBaseAmount parses a numeric memo token into non-negative base units.
// Separator characters (commas, underscores, whitespace) are stripped; a
// token with no digits at all is rejected rather than coerced to zero.
func ParseBaseAmount(token string) (int64, error) {
	var digits strings.Builder
	for _, r := range token {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, Rejectf(ReasonInvalidNumber, "invalid numeric value %q", token)
	}
	value, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0, Rejectf(ReasonInvalidNumber, "invalid numeric value %q", token)
	}
	return value, nil
}

// SanitizeText strips HTML/script content and control characters from
// free-text fields and collapses runs of whitespace. Stored text is rendered
// downstream, so this runs before anything reaches the database.
func SanitizeText(text string) string {
	clean := sanitizePolicy.Sanitize(text)

	var out strings.Builder
	out.Grow(len(clean))
	lastSpace := false
	for _, r := range clean {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			if !lastSpace {
				out.WriteRune(' ')
			}
			lastSpace = true
			continue
		}
		out.WriteRune(r)
		lastSpace = false
	}

	return strings.TrimSpace(out.String())
}

// CheckTransactionAmount enforces the payment gate: the transfer must carry
// at least minBaseAmount of the base asset. A zero minimum disables the gate.
func CheckTransactionAmount(action midgard.Action, minBaseAmount int64) error {
	if minBaseAmount <= 0 {
		return nil
	}
	amount := action.BaseAssetAmount(BaseAsset)
	if amount < minBaseAmount {
		return Rejectf(ReasonInsufficientAmount,
			"insufficient amount on action %s: got %d, need %d", action.TxID(), amount, minBaseAmount)
	}
	return nil
}
