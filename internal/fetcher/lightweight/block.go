package lightweight

import (
	"bytes"
	"strings"
)

// blockFingerprints are lowercase substrings that identify bot
// challenge pages across the common protection vendors.
var blockFingerprints = []string{
	"cf-challenge",
	"cf-browser-verification",
	"cf_chl_opt",
	"px-captcha",
	"_px_",
	"just a moment...",
	"checking your browser",
	"verify you are a human",
	"are you a robot",
	"pardon our interruption",
	"request blocked",
	"access denied",
	"datadome",
	"incapsula",
	"distil_r_captcha",
}

// IsBlocked reports whether a response is a bot challenge rather than
// real content. 403 and 429 always count; other statuses count when
// the body carries a known fingerprint or looks like a tiny
// meta-refresh interstitial.
func IsBlocked(status int, body []byte) bool {
	if status == 403 || status == 429 {
		return true
	}

	lower := bytes.ToLower(body)
	for _, fp := range blockFingerprints {
		if bytes.Contains(lower, []byte(fp)) {
			return true
		}
	}

	// Challenge interstitials are short pages that immediately refresh.
	if len(body) > 0 && len(body) < 1024 && bytes.Contains(lower, []byte("http-equiv=\"refresh\"")) {
		return true
	}
	return false
}

// garbageTitles are page titles that mean the fetch did not reach a
// product page, whatever the status code said.
var garbageTitles = []string{
	"access denied",
	"robot or human",
	"page not found",
	"just a moment",
	"attention required",
}

func isGarbageTitle(title string) bool {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" {
		return true
	}
	for _, g := range garbageTitles {
		if strings.Contains(t, g) {
			return true
		}
	}
	// Bare error pages ("404", "Error", "Loading...").
	switch {
	case strings.HasPrefix(t, "404"), strings.HasPrefix(t, "error"),
		strings.HasPrefix(t, "loading"), strings.HasPrefix(t, "redirecting"):
		return true
	}
	return false
}
