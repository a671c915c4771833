package metrics

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/grantops/grantscope/schema"
)

// digest joins the parts and returns a hex sha256, mirroring the cache key
// construction used across the engine.
func digest(parts ...string) string {
	joined := strings.Join(parts, ":")
	return fmt.Sprintf("%x", sha256.Sum256([]byte(joined)))
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatCount(n int) string {
	return strconv.Itoa(n)
}

// formatDate truncates to the day so intra-day recomputation stays cacheable.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return "none"
	}
	return t.UTC().Format("2006-01-02")
}

// sortedDates renders concurrent close dates in a canonical order so batch
// ordering does not perturb the fingerprint.
func sortedDates(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, formatDate(d))
	}
	sort.Strings(out)
	return out
}

// profileDigest canonicalizes the profile fields the calculators read.
// A nil profile hashes to a fixed token.
func profileDigest(p *schema.Profile) string {
	if p == nil {
		return "noprofile"
	}

	keywords := append([]string(nil), p.Keywords...)
	sort.Strings(keywords)
	categories := append([]string(nil), p.Categories...)
	sort.Strings(categories)
	agencies := append([]string(nil), p.PreferredAgencies...)
	sort.Strings(agencies)

	return digest(
		p.ApplicantType,
		strings.Join(keywords, ","),
		strings.Join(categories, ","),
		strings.Join(agencies, ","),
		formatAmount(p.HourlyRate),
		formatCount(p.MaxConcurrent),
	)
}
