package handlers

import "encoding/json"

// firstImageURL decodes an image_urls JSON column and returns the first
// entry, or "" when the list is empty or malformed.
func firstImageURL(imageJSON string) string {
	var urls []string
	if err := json.Unmarshal([]byte(imageJSON), &urls); err != nil || len(urls) == 0 {
		return ""
	}
	return urls[0]
}
