// Package email normalizes addresses so that provider aliasing tricks
// (dots, plus tags) cannot be used to register the same mailbox twice.
package email

import "strings"

var (
	// Providers that ignore dots in the local part.
	dotBlind = map[string]bool{
		"gmail.com":      true,
		"googlemail.com": true,
	}
	// Providers with plus-tag aliasing (user+tag@).
	plusTag = map[string]bool{
		"gmail.com":      true,
		"googlemail.com": true,
		"outlook.com":    true,
		"hotmail.com":    true,
		"live.com":       true,
		"fastmail.com":   true,
		"fastmail.fm":    true,
	}
	// Providers with hyphen-tag aliasing (user-tag@).
	hyphenTag = map[string]bool{
		"yahoo.com": true,
	}
)

// Normalize lowercases an address and strips provider aliasing from the
// local part. Unknown providers are only lowercased.
func Normalize(addr string) string {
	addr = strings.ToLower(strings.TrimSpace(addr))
	at := strings.LastIndex(addr, "@")
	if at < 0 {
		return addr
	}
	local, domain := addr[:at], addr[at+1:]
	if dotBlind[domain] {
		local = strings.ReplaceAll(local, ".", "")
	}
	if plusTag[domain] {
		if i := strings.Index(local, "+"); i >= 0 {
			local = local[:i]
		}
	}
	if hyphenTag[domain] {
		if i := strings.Index(local, "-"); i >= 0 {
			local = local[:i]
		}
	}
	return local + "@" + domain
}

// Domain returns the part after the final "@", lowercased.
func Domain(addr string) string {
	addr = strings.ToLower(strings.TrimSpace(addr))
	if at := strings.LastIndex(addr, "@"); at >= 0 {
		return addr[at+1:]
	}
	return ""
}
