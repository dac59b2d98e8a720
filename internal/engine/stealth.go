package engine

import (
	stealth "github.com/anatolykoptev/go-stealth"
)

// BrowserUserAgent returns a current desktop Chrome user agent for the
// automated browser, so the sites serve their regular desktop layout.
func BrowserUserAgent() string { return stealth.RandomUserAgent() }

// BrowserLanguage returns the Accept-Language value the browser sends. The
// viewer labels ("viewers", "watching") are only produced in English.
func BrowserLanguage() string {
	if lang := stealth.ChromeHeaders()["accept-language"]; lang != "" {
		return lang
	}
	return "en-US,en;q=0.9"
}
