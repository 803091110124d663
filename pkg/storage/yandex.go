package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"vkbackup/pkg/config"
	errs "vkbackup/pkg/errors"
	"vkbackup/pkg/logger"
	"vkbackup/pkg/ratelimit"
)

// DefaultYandexBaseURL is the Yandex.Disk REST API root
const DefaultYandexBaseURL = "https://cloud-api.yandex.net/v1/disk"

// yandexAlreadyExists is the error code of a 409 for an existing resource
const yandexAlreadyExists = "DiskResourceAlreadyExistsError"

// Yandex uploads to Yandex.Disk through its REST API
type Yandex struct {
	httpClient *http.Client
	baseURL    string
	token      string
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

type yandexError struct {
	Message     string `json:"message"`
	Description string `json:"description"`
	Error       string `json:"error"`
}

type yandexLink struct {
	Href   string `json:"href"`
	Method string `json:"method"`
}

// NewYandex creates a Yandex.Disk backend authorized by an OAuth token
func NewYandex(cfg config.YandexConfig, token string, timeout time.Duration, log logger.Logger) *Yandex {
	if log == nil {
		log = logger.GetLogger()
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultYandexBaseURL
	}

	var limiter ratelimit.Limiter = ratelimit.Unlimited{}
	if cfg.RequestsPerMinute > 0 {
		limiter = ratelimit.NewSlidingWindow(cfg.RequestsPerMinute, time.Minute)
	}

	return &Yandex{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		token:      token,
		limiter:    limiter,
		logger:     log.WithField("backend", config.BackendYandex),
	}
}

func (y *Yandex) Name() string { return config.BackendYandex }

// EnsureFolder creates the folder and any missing parents. A parent that
// already exists is left alone.
func (y *Yandex) EnsureFolder(ctx context.Context, folder string) error {
	var current string
	for _, part := range strings.Split(strings.Trim(folder, "/"), "/") {
		if part == "" {
			continue
		}
		current = path.Join(current, part)
		if err := y.createFolder(ctx, current); err != nil {
			return err
		}
	}
	return nil
}

func (y *Yandex) createFolder(ctx context.Context, folder string) error {
	const op = "create folder"

	exists, err := y.Exists(ctx, folder)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	resp, err := y.do(ctx, http.MethodPut, y.resourceURL("/resources", folder, nil), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusOK:
	case http.StatusConflict:
		if err := y.conflict(op, resp); !errors.Is(err, ErrAlreadyExists) {
			return err
		}
	default:
		return y.apiError(op, resp)
	}

	y.logger.DebugWithFields("folder ready", map[string]interface{}{
		"folder": folder,
		"status": resp.StatusCode,
	})
	return nil
}

// Exists checks the resource metadata endpoint: 200 present, 404 absent
func (y *Yandex) Exists(ctx context.Context, remotePath string) (bool, error) {
	resp, err := y.do(ctx, http.MethodGet, y.resourceURL("/resources", remotePath, nil), nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, y.apiError("check resource", resp)
	}
}

// Upload requests an upload link and PUTs the bytes to it
func (y *Yandex) Upload(ctx context.Context, remotePath string, data []byte) error {
	const op = "upload"

	link, err := y.uploadLink(ctx, remotePath)
	if err != nil {
		return err
	}

	method := link.Method
	if method == "" {
		method = http.MethodPut
	}

	if err := y.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, link.Href, bytes.NewReader(data))
	if err != nil {
		return errs.Wrap(errs.ErrorTypeUnknown, op, err)
	}
	req.ContentLength = int64(len(data))
	req.Header.Set("Content-Type", contentType(data))

	start := time.Now()
	resp, err := y.httpClient.Do(req)
	if err != nil {
		return errs.Network(op, err)
	}
	defer resp.Body.Close()
	logger.LogRequest(y.logger, method, "upload href", resp.StatusCode, float64(time.Since(start).Microseconds())/1000)

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusAccepted, http.StatusOK:
		return nil
	default:
		return y.apiError(op, resp)
	}
}

func (y *Yandex) uploadLink(ctx context.Context, remotePath string) (*yandexLink, error) {
	const op = "request upload link"

	resp, err := y.do(ctx, http.MethodGet, y.resourceURL("/resources/upload", remotePath, url.Values{"overwrite": {"false"}}), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return nil, y.conflict(op+" "+remotePath, resp)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, y.apiError(op, resp)
	}

	var link yandexLink
	if err := json.NewDecoder(resp.Body).Decode(&link); err != nil {
		return nil, &errs.Error{Type: errs.ErrorTypeParsing, Op: op, Err: err, Code: resp.StatusCode}
	}
	if link.Href == "" {
		return nil, errs.New(errs.ErrorTypeParsing, op, "response has no href")
	}
	return &link, nil
}

func (y *Yandex) resourceURL(endpoint, remotePath string, extra url.Values) string {
	q := url.Values{}
	for k, v := range extra {
		q[k] = v
	}
	q.Set("path", remotePath)
	return y.baseURL + endpoint + "?" + q.Encode()
}

func (y *Yandex) do(ctx context.Context, method, rawURL string, body io.Reader) (*http.Response, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, "build request", err)
	}
	req.Header.Set("Authorization", "OAuth "+y.token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := y.httpClient.Do(req)
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		y.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"endpoint": rawURL,
			"error":    err.Error(),
		})
		return nil, errs.Network(method+" "+req.URL.Path, err)
	}

	logger.LogRequest(y.logger, method, rawURL, resp.StatusCode, elapsed)
	return resp, nil
}

// conflict reads a 409 body. Only DiskResourceAlreadyExistsError means the
// resource is there; a missing parent and other conflicts are errors.
func (y *Yandex) conflict(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var apiErr yandexError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error == yandexAlreadyExists {
		return fmt.Errorf("%s: %w", op, ErrAlreadyExists)
	}
	return y.bodyError(op, resp.StatusCode, body)
}

// apiError turns a non-success response into a typed error, preferring the
// provider's description over the raw body
func (y *Yandex) apiError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return y.bodyError(op, resp.StatusCode, body)
}

func (y *Yandex) bodyError(op string, status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	var apiErr yandexError
	if json.Unmarshal(body, &apiErr) == nil {
		switch {
		case apiErr.Description != "":
			msg = apiErr.Description
		case apiErr.Message != "":
			msg = apiErr.Message
		case apiErr.Error != "":
			msg = apiErr.Error
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	t := errs.FromStatus(status)
	if t == errs.ErrorTypeUnknown {
		t = errs.ErrorTypeRemoteAPI
	}
	return &errs.Error{Type: t, Op: op, Message: msg, Code: status}
}
