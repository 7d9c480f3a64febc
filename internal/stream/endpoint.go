package stream

import (
	"net/url"
	"strings"
)

// Endpoint turns an http(s) API base URL into the websocket URL of its event stream,
// optionally filtered to one auction. A ws(s) URL is used as-is apart from the filter.
func Endpoint(base, auctionID string) string {
	base = strings.TrimRight(base, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://") + "/events/ws"
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://") + "/events/ws"
	case strings.HasPrefix(base, "ws://"), strings.HasPrefix(base, "wss://"):
	default:
		return ""
	}
	if auctionID == "" {
		return base
	}
	return base + "?auction=" + url.QueryEscape(auctionID)
}
