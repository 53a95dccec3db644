package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// fetchYouTubeTranscript calls the YouTube transcript backend for a resolved
// video id and converts the returned caption array to SRT text.
func (c *Client) fetchYouTubeTranscript(ctx context.Context, videoID, lang string) *Result {
	endpoint := fmt.Sprintf("%s/transcript?video_id=%s&lang=%s",
		c.youtubeBaseURL, url.QueryEscape(videoID), url.QueryEscape(lang))

	body, failure := c.get(ctx, endpoint, "YouTube API error")
	if failure != nil {
		return failure
	}

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return &Result{Success: false, ErrorMessage: fmt.Sprintf("YouTube API error: invalid response: %v", err)}
	}

	// The backend returns either a bare caption array or an object wrapping one
	var captions []interface{}
	var fields map[string]interface{}
	switch v := data.(type) {
	case []interface{}:
		captions = v
	case map[string]interface{}:
		fields = v
		for _, key := range []string{"transcript", "transcripts", "data"} {
			if arr, ok := v[key].([]interface{}); ok {
				captions = arr
				break
			}
		}
	}

	return &Result{
		Success:    true,
		SRTContent: ConvertToSRT(parseCaptions(captions)),
		Raw:        data,
		Metadata: &Metadata{
			Title:       stringField(fields, "title", "videoTitle"),
			Author:      stringField(fields, "author", "channelName", "channel"),
			Description: stringField(fields, "description", "videoDescription"),
			ViewCount:   intField(fields, "viewCount", "views"),
			LikeCount:   intField(fields, "likeCount", "likes"),
			Duration:    intField(fields, "duration", "lengthSeconds"),
			Thumbnail:   thumbnailField(fields),
		},
	}
}

// fetchTikTokSubtitles calls the TikTok backend for subtitle extraction.
func (c *Client) fetchTikTokSubtitles(ctx context.Context, videoURL, region string) *Result {
	endpoint := fmt.Sprintf("%s/video?url=%s&region=%s",
		c.tiktokBaseURL, url.QueryEscape(videoURL), url.QueryEscape(region))

	body, failure := c.get(ctx, endpoint, "TikTok API error")
	if failure != nil {
		return failure
	}

	data, failure := decodeObject(body, "TikTok API error")
	if failure != nil {
		return failure
	}

	var srtContent string
	for _, key := range []string{"subtitle", "captions"} {
		if arr, ok := data[key].([]interface{}); ok {
			srtContent = ConvertToSRT(parseCaptions(arr))
			break
		}
	}

	return &Result{
		Success:         true,
		SRTContent:      srtContent,
		VideoContentURL: stringField(data, "video_url", "videoUrl"),
		Raw:             data,
		Metadata:        tiktokMetadata(data),
	}
}

// fetchTikTokDownload calls the TikTok backend for a downloadable video URL.
func (c *Client) fetchTikTokDownload(ctx context.Context, videoURL, region string) *Result {
	endpoint := fmt.Sprintf("%s/video?url=%s&region=%s",
		c.tiktokBaseURL, url.QueryEscape(videoURL), url.QueryEscape(region))

	body, failure := c.get(ctx, endpoint, "TikTok download error")
	if failure != nil {
		return failure
	}

	data, failure := decodeObject(body, "TikTok download error")
	if failure != nil {
		return failure
	}

	return &Result{
		Success:         true,
		VideoContentURL: stringField(data, "video_url", "videoUrl", "download_url"),
		Raw:             data,
		Metadata:        tiktokMetadata(data),
	}
}

// get performs the backend call and folds transport and HTTP-status failures
// into a failure Result with a readable message.
func (c *Client) get(ctx context.Context, endpoint, errPrefix string) ([]byte, *Result) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &Result{Success: false, ErrorMessage: fmt.Sprintf("%s: %v", errPrefix, err)}
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Result{Success: false, ErrorMessage: fmt.Sprintf("%s: %v", errPrefix, err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Result{Success: false, ErrorMessage: fmt.Sprintf("%s: %v", errPrefix, err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &Result{
			Success:      false,
			ErrorMessage: fmt.Sprintf("%s: %d - %s", errPrefix, resp.StatusCode, string(body)),
		}
	}

	return body, nil
}

func decodeObject(body []byte, errPrefix string) (map[string]interface{}, *Result) {
	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &Result{Success: false, ErrorMessage: fmt.Sprintf("%s: invalid response: %v", errPrefix, err)}
	}
	return data, nil
}

func tiktokMetadata(data map[string]interface{}) *Metadata {
	return &Metadata{
		Title:        stringField(data, "title", "description"),
		Author:       stringField(data, "author", "username"),
		Description:  stringField(data, "description"),
		LikeCount:    intField(data, "likeCount", "likes"),
		ViewCount:    intField(data, "viewCount", "views"),
		ShareCount:   intField(data, "shareCount", "shares"),
		CommentCount: intField(data, "commentCount", "comments"),
		Duration:     intField(data, "duration"),
		Thumbnail:    stringField(data, "thumbnail", "cover"),
	}
}

// stringField returns the first present string value among keys
func stringField(m map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// intField returns the first present numeric value among keys
func intField(m map[string]interface{}, keys ...string) *int64 {
	for _, key := range keys {
		if f, ok := m[key].(float64); ok {
			n := int64(f)
			return &n
		}
	}
	return nil
}

// thumbnailField handles both a plain thumbnail URL and the
// thumbnails[0].url shape some responses use
func thumbnailField(m map[string]interface{}) string {
	if s := stringField(m, "thumbnail"); s != "" {
		return s
	}
	if arr, ok := m["thumbnails"].([]interface{}); ok && len(arr) > 0 {
		if entry, ok := arr[0].(map[string]interface{}); ok {
			return stringField(entry, "url")
		}
	}
	return ""
}
