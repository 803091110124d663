package vk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vkbackup/pkg/config"
	errs "vkbackup/pkg/errors"
	"vkbackup/pkg/logger"
	"vkbackup/pkg/models"
	"vkbackup/pkg/ratelimit"
)

const userAgent = "vkbackup/1.0"

// Client talks to the VK API and downloads photo renditions from its CDN
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiVersion string
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

// NewClient creates a client from the vk config section
func NewClient(cfg config.VKConfig, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	version := cfg.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}

	var limiter ratelimit.Limiter = ratelimit.Unlimited{}
	if cfg.RequestsPerSecond > 0 {
		limiter = ratelimit.PerSecond(cfg.RequestsPerSecond)
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiVersion: version,
		limiter:    limiter,
		logger:     log.WithField("component", "vk"),
	}
}

// FetchPhotos lists up to count photos of userID's album with one
// photos.get call and returns one record per photo, using its largest
// rendition. An error payload from the API is returned as a remote_api error.
func (c *Client) FetchPhotos(ctx context.Context, userID, accessToken string, count int, albumID string) ([]models.PhotoRecord, error) {
	if count < 1 || count > MaxCount {
		return nil, errs.Config(PhotosGetMethod, fmt.Sprintf("count must be between 1 and %d, got %d", MaxCount, count))
	}

	reqURL := PhotosGetURL(c.baseURL, c.apiVersion, userID, accessToken, count, albumID)

	var payload photosGetResponse
	if err := c.getJSON(ctx, reqURL, &payload); err != nil {
		return nil, err
	}

	if payload.Error != nil {
		c.logger.WarnWithFields("VK API returned an error", map[string]interface{}{
			"code":    payload.Error.Code,
			"message": payload.Error.Message,
		})
		return nil, errs.RemoteAPI(PhotosGetMethod, payload.Error.Code, payload.Error.Message)
	}
	if payload.Response == nil {
		return nil, errs.New(errs.ErrorTypeParsing, PhotosGetMethod, "response has neither response nor error")
	}

	photos := make([]models.PhotoRecord, 0, len(payload.Response.Items))
	for _, item := range payload.Response.Items {
		best, ok := BestSize(item.Sizes)
		if !ok {
			c.logger.WarnWithFields("photo has no sizes, skipping", map[string]interface{}{
				"photo_id": item.ID,
				"owner_id": item.OwnerID,
			})
			continue
		}
		photos = append(photos, models.PhotoRecord{
			FileName: FileName(item.Likes.Count, item.Date),
			Size:     best.Type,
			URL:      best.URL,
		})
	}

	c.logger.InfoWithFields("fetched photos", map[string]interface{}{
		"user_id":   userID,
		"album_id":  albumID,
		"requested": count,
		"total":     payload.Response.Count,
		"returned":  len(photos),
	})

	return photos, nil
}

// FileName derives the upload name from like count and unix timestamp.
// Two photos with the same pair get the same name.
func FileName(likes int, date int64) string {
	return fmt.Sprintf("%d_%d.jpg", likes, date)
}

// DownloadPhoto fetches the full body of a rendition
func (c *Client) DownloadPhoto(ctx context.Context, photoURL string) ([]byte, error) {
	const op = "download photo"

	resp, err := c.get(ctx, photoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(op, resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Network(op, err)
	}

	c.logger.DebugWithFields("downloaded photo", map[string]interface{}{
		"url":  photoURL,
		"size": len(data),
	})
	return data, nil
}

func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, "build request", err)
	}
	req.Header.Set("User-Agent", userAgent)

	endpoint := redactToken(rawURL)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"endpoint": endpoint,
			"error":    err.Error(),
		})
		return nil, errs.Network(req.Method+" "+req.URL.Host, err)
	}

	logger.LogRequest(c.logger, req.Method, endpoint, resp.StatusCode, elapsed)
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, target interface{}) error {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(PhotosGetMethod, resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Network(PhotosGetMethod, err)
	}

	if err := json.Unmarshal(body, target); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": preview,
		})
		return &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Op:      PhotosGetMethod,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}
	return nil
}

func (c *Client) checkResponseStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(snippet))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	return &errs.Error{
		Type:    errs.FromStatus(resp.StatusCode),
		Op:      op,
		Message: msg,
		Code:    resp.StatusCode,
	}
}
