package pipeline

import (
	"net/url"
	"strings"
)

// parseYouTubeVideoID resolves a video id from the known YouTube URL shapes:
// youtu.be/<id>, ?v=<id> and /embed/<id>. It returns "" for anything else;
// the caller then passes the raw URL through to the backend unchanged.
func parseYouTubeVideoID(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}

	if strings.Contains(u.Host, "youtu.be") {
		return strings.TrimPrefix(u.Path, "/")
	}
	if v := u.Query().Get("v"); v != "" {
		return v
	}
	if strings.HasPrefix(u.Path, "/embed/") {
		return strings.TrimPrefix(u.Path, "/embed/")
	}

	return ""
}
