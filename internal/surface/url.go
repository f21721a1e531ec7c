package surface

import (
	"net/url"
	"strings"
)

// ResolveReference resolves href against base the way a browser resolves an
// anchor's href property. It returns href unchanged when either side does not
// parse or when base is nil.
func ResolveReference(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
