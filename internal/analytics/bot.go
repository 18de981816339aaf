package analytics

import (
	"strings"

	"github.com/mssola/useragent"
)

// Lower-cased User-Agent fragments of crawlers, unfurlers and scripted
// clients that load the ad script without a human behind it.
var botSignatures = []string{
	"bot", "spider", "crawl", "preview",
	"facebookexternalhit", "whatsapp", "slackbot", "telegrambot",
	"chrome-lighthouse", "google-ad", "googlesecurityscanner",
	"headlesschrome/", "phantomjs", "puppeteer", "playwright",
	"go-http-client/", "curl/", "wget/", "python-requests/", "python-urllib/",
	"okhttp/", "java/", "libwww-perl/", "zgrab/",
}

// IsBot reports whether rawUA belongs to an automated client. An empty
// User-Agent is treated as a bot; browsers always send one.
func IsBot(rawUA string) bool {
	if strings.TrimSpace(rawUA) == "" {
		return true
	}
	if useragent.New(rawUA).Bot() {
		return true
	}
	lower := strings.ToLower(rawUA)
	for _, sig := range botSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}
