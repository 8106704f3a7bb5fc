package upi

import "net/url"

// merchantMarkers are the query keys whose presence identifies a signed
// merchant payload. Presence is the entire check: the values are opaque to
// this app, and signature verification happens at the receiving end.
var merchantMarkers = []string{"mid", "mc", "sign", "orgid", "tid"}

// IsMerchantPayload reports whether the decoded query parameters carry at
// least one merchant signature marker.
func IsMerchantPayload(params url.Values) bool {
	for _, key := range merchantMarkers {
		if _, ok := params[key]; ok {
			return true
		}
	}
	return false
}
