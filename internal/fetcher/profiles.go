package fetcher

import "net/http"

// retryStatuses are the client errors that naive bot filters commonly return to
// unfamiliar user agents. Each triggers one retry with the alternate profile.
var retryStatuses = map[int]bool{
	http.StatusBadRequest:       true,
	http.StatusUnauthorized:     true,
	http.StatusForbidden:        true,
	http.StatusNotFound:         true,
	http.StatusMethodNotAllowed: true,
	http.StatusRequestTimeout:   true,
	http.StatusConflict:         true,
}

// ShouldRetryWithAlternate reports whether status triggers the alternate header profile.
func ShouldRetryWithAlternate(status int) bool {
	return retryStatuses[status]
}

func primaryProfile(userAgent string) http.Header {
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	h.Set("Accept", "*/*")
	return h
}

// alternateProfile only advertises gzip because that is the encoding the
// transport can decode.
func alternateProfile(userAgent string) http.Header {
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	h.Set("Accept", "*/*")
	h.Set("Accept-Encoding", "gzip")
	h.Set("Connection", "keep-alive")
	return h
}
