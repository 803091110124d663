package vk

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultBaseURL is the method root of the VK API
	DefaultBaseURL = "https://api.vk.com/method"

	// DefaultAPIVersion is sent as the v parameter
	DefaultAPIVersion = "5.199"

	// PhotosGetMethod lists photos of an album
	PhotosGetMethod = "photos.get"

	// MaxCount is the largest count photos.get accepts
	MaxCount = 1000
)

// PhotosGetURL builds the photos.get request URL
func PhotosGetURL(baseURL, apiVersion, userID, accessToken string, count int, albumID string) string {
	params := url.Values{}
	params.Set("user_id", userID)
	params.Set("access_token", accessToken)
	params.Set("v", apiVersion)
	params.Set("album_id", albumID)
	params.Set("count", strconv.Itoa(count))
	params.Set("extended", "1")

	return fmt.Sprintf("%s/%s?%s", strings.TrimRight(baseURL, "/"), PhotosGetMethod, params.Encode())
}

// redactToken strips access_token from a URL before it is logged
func redactToken(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Has("access_token") {
		q.Set("access_token", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
