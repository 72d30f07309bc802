// Package botdetect scores request metadata for automation signals.
// The verdict is advisory: calling code may switch to a stricter rate
// limit policy, the classifier itself never blocks anything.
package botdetect

import (
	"net/http"
	"strings"
)

const (
	SignalMissingUserAgent      = "missing_user_agent"
	SignalBotUserAgent          = "bot_user_agent"
	SignalAutomationMarker      = "automation_marker"
	SignalMissingAcceptLanguage = "missing_accept_language"
	SignalMissingAcceptEncoding = "missing_accept_encoding"
)

// likelyBotThreshold is the number of independent signals required before
// a request is considered automated; a single odd header is not enough.
const likelyBotThreshold = 2

var botSubstrings = []string{
	"bot", "crawler", "spider", "scraper",
	"curl", "wget", "python-requests", "go-http-client", "okhttp",
}

var automationMarkers = []string{
	"headless", "phantomjs", "selenium", "puppeteer", "playwright",
}

type Result struct {
	IsLikelyBot bool
	Signals     []string
}

type Classifier struct{}

func NewClassifier() Classifier {
	return Classifier{}
}

func (c Classifier) Classify(request *http.Request) Result {
	signals := make([]string, 0)

	userAgent := strings.ToLower(strings.TrimSpace(request.Header.Get("User-Agent")))
	switch {
	case userAgent == "":
		signals = append(signals, SignalMissingUserAgent)
	case containsAny(userAgent, botSubstrings):
		signals = append(signals, SignalBotUserAgent)
	}
	if containsAny(userAgent, automationMarkers) {
		signals = append(signals, SignalAutomationMarker)
	}

	if request.Header.Get("Accept-Language") == "" {
		signals = append(signals, SignalMissingAcceptLanguage)
	}
	if request.Header.Get("Accept-Encoding") == "" {
		signals = append(signals, SignalMissingAcceptEncoding)
	}

	return Result{
		IsLikelyBot: len(signals) >= likelyBotThreshold,
		Signals:     signals,
	}
}

func containsAny(value string, substrings []string) bool {
	for _, substring := range substrings {
		if strings.Contains(value, substring) {
			return true
		}
	}
	return false
}
