// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package utils

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// urlPattern matches HTTP and HTTPS URLs
// Pattern explanation:
// - https?:// - matches http:// or https://
// - [^\s<>"]+ - matches one or more characters that are not whitespace, <, >, or "
var urlPattern = regexp.MustCompile(`https?://[^\s<>"]+`)

// ExtractURLs extracts all HTTP/HTTPS URLs from the given text.
// It returns a deduplicated list of URLs in the order they appear.
// Calendar events often carry the meeting link only in the free-form
// description, so this is how meeting ingestion finds joinable URLs.
func ExtractURLs(text string) []string {
	if text == "" {
		return []string{}
	}

	matches := urlPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return []string{}
	}

	// Deduplicate while preserving order
	seen := make(map[string]bool)
	urls := make([]string, 0, len(matches))

	for _, u := range matches {
		u = cleanTrailingPunctuation(u)

		if seen[u] {
			continue
		}

		seen[u] = true
		urls = append(urls, u)
	}

	return urls
}

// cleanTrailingPunctuation removes common trailing punctuation that the
// regex captures when a URL sits at the end of a sentence.
func cleanTrailingPunctuation(u string) string {
	trailingChars := []string{".", ",", "!", "?", ";", ":", ")", "]", "}"}

	for {
		trimmed := false
		for _, char := range trailingChars {
			if strings.HasSuffix(u, char) {
				u = strings.TrimSuffix(u, char)
				trimmed = true
				break
			}
		}
		if !trimmed {
			break
		}
	}

	return u
}

// ExtractHost extracts the lowercased host (without port) from a URL
// string, or empty when the URL cannot be parsed.
func ExtractHost(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

// CanonicalizeURL rebuilds a meeting URL keeping only the query
// parameters named in keep. The scheme and host are lowercased, the
// fragment is dropped and the remaining parameters are re-encoded in
// sorted order so that the result is stable and idempotent.
func CanonicalizeURL(rawURL string, keep ...string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""

	query := parsed.Query()
	kept := url.Values{}
	for _, name := range keep {
		if values, ok := query[name]; ok {
			// First value wins; repeated volatile params are noise.
			kept.Set(name, values[0])
		}
	}

	if len(kept) == 0 {
		parsed.RawQuery = ""
	} else {
		parsed.RawQuery = encodeSorted(kept)
	}

	parsed.Path = strings.TrimSuffix(parsed.Path, "/")

	return parsed.String(), nil
}

// encodeSorted encodes query values with deterministic parameter order.
func encodeSorted(values url.Values) string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(values.Get(name)))
	}
	return b.String()
}
