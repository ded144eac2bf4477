// Package fetch - platform.go provides platform detection and
// platform-specific selectors for common article hosts.
package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a recognized content host.
type Platform string

const (
	// PlatformWikipedia is any Wikipedia language edition
	PlatformWikipedia Platform = "wikipedia"
	// PlatformMedium is medium.com and custom Medium domains
	PlatformMedium Platform = "medium"
	// PlatformSubstack is a Substack newsletter
	PlatformSubstack Platform = "substack"
	// PlatformUnknown is an unrecognized host
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies the content host from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Host)

	if strings.Contains(host, "wikipedia.org") {
		return PlatformWikipedia
	}

	if strings.Contains(host, "medium.com") {
		return PlatformMedium
	}

	if strings.Contains(host, "substack.com") {
		return PlatformSubstack
	}

	return PlatformUnknown
}

// PlatformContentSelectors returns content selectors optimized for a specific host.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformWikipedia:
		return []string{
			".mw-parser-output", // rendered article body
			"#mw-content-text",
			"#bodyContent",
			"main",
		}
	case PlatformMedium:
		return []string{
			"article",
			"section[data-field='body']",
			".postArticle-content",
			"main",
		}
	case PlatformSubstack:
		return []string{
			".available-content",
			".post-content",
			".body.markup",
			"article",
		}
	default:
		return DefaultTextSelectors()
	}
}

// PlatformNoiseSelectors returns noise exclusion selectors for a specific host.
func PlatformNoiseSelectors(platform Platform) []string {
	// Common noise selectors for all hosts
	common := []string{
		// Comment threads and reactions
		".comments",
		"#comments",
		".comments-section",
		".responses-wrapper",

		// Related/recommended content
		".related-articles",
		".recommended",
		".read-more",
		".also-read",

		// Newsletter and signup prompts
		".newsletter-signup",
		".subscribe-prompt",
		".signup-form",

		// Cookie and GDPR
		".cookie-consent",
		".gdpr-notice",
	}

	switch platform {
	case PlatformWikipedia:
		return append(common,
			".navbox",
			".infobox",
			".mw-editsection",
			".reflist",
			".sidebar",
			"#toc",
			".hatnote",
			".mbox-small",
		)
	case PlatformMedium:
		return append(common,
			".pw-multi-vote-count",
			".pw-responses-count",
			".speechify-ignore",
			".meteredContent-upsell",
		)
	case PlatformSubstack:
		return append(common,
			".subscription-widget-wrap",
			".subscribe-widget",
			".paywall",
			".post-footer",
		)
	default:
		return common
	}
}
