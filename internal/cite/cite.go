// Package cite implements citation string handling: normalization for
// lookups, series slugs for URLs, and recognition of full case and
// statutory citations.
package cite

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	nonAlnum      = regexp.MustCompile(`[^a-z0-9]+`)
	nonSlugChars  = regexp.MustCompile(`[^\w\s-]`)
	spaceRuns     = regexp.MustCompile(`[\s_-]+`)
	caseCitePart  = regexp.MustCompile(`^(\d+)\s+(.*?)\s+(\d+)$`)
	slugPattern   = regexp.MustCompile(`^[a-z0-9-]+$`)
	volumePattern = regexp.MustCompile(`^[0-9]+$`)
)

// Normalize reduces a citation to lowercase alphanumerics, the form stored in
// citations.normalized_cite: "23 Ill. App. 19" -> "23illapp19".
func Normalize(cite string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(cite), "")
}

// Slugify converts a reporter series or volume label to its URL slug:
// "Ill. App." -> "ill-app", "Mass." -> "mass".
func Slugify(s string) string {
	s = nonSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "")
	return strings.Trim(spaceRuns.ReplaceAllString(s, "-"), "-")
}

// IsSlug reports whether s is already in slug form.
func IsSlug(s string) bool {
	return s != "" && slugPattern.MatchString(s)
}

// IsVolumeNumber reports whether s is a plain volume number.
func IsVolumeNumber(s string) bool {
	return volumePattern.MatchString(s)
}

// CaseCitation is a parsed full citation, e.g. "1 Mass. 1".
type CaseCitation struct {
	Volume string
	Series string
	Page   string
}

// ParseCaseCitation splits a full case citation into volume, series and page.
// The second return is false when the input is not a full citation. Statutory
// citations also match the volume-series-page shape and are rejected here.
func ParseCaseCitation(s string) (CaseCitation, bool) {
	if LooksLikeStatute(s) {
		return CaseCitation{}, false
	}
	m := caseCitePart.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return CaseCitation{}, false
	}
	return CaseCitation{Volume: m[1], Series: m[2], Page: m[3]}, true
}

// LooksLikeStatute reports whether s appears to be a statutory citation such
// as "11 U.S.C. § 550". These are routed to the citation search page instead
// of a case page.
func LooksLikeStatute(s string) bool {
	return strings.Contains(s, "§")
}

// FrontendURL builds the canonical case-browser path for a citation, with an
// optional trailing case ID for disambiguation.
func FrontendURL(seriesSlug, volume, page string, caseID int64) string {
	url := "/" + seriesSlug + "/" + volume + "/" + page + "/"
	if caseID > 0 {
		url += strconv.FormatInt(caseID, 10) + "/"
	}
	return url
}
