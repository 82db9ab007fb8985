package deviceconfig

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/favsoft/epdsetup/internal/logging"
	"github.com/favsoft/epdsetup/internal/pages"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for failed requests
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the default delay between retry attempts
	DefaultRetryDelay = 1 * time.Second

	// DefaultMaxRetryDelay is the maximum delay for exponential backoff
	DefaultMaxRetryDelay = 30 * time.Second

	// maxPageBytes bounds how much of a response is read.
	maxPageBytes = 64 << 10
)

// Client drives a display's setup pages over HTTP, the way a browser
// pressing its buttons would.
type Client struct {
	// BaseURL is the base URL for the display (e.g., "http://192.168.4.16:80")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// MaxRetries is the maximum number of retry attempts for failed requests
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts
	RetryDelay time.Duration

	// MaxRetryDelay is the maximum delay for exponential backoff
	MaxRetryDelay time.Duration

	// UseExponentialBackoff enables exponential backoff for retries
	UseExponentialBackoff bool
}

// NewClient creates a new client for the display at ip:port.
func NewClient(ip string, port int) *Client {
	return NewClientWithURL(fmt.Sprintf("http://%s:%d", ip, port))
}

// NewClientWithURL creates a new client with a full base URL
func NewClientWithURL(baseURL string) *Client {
	return &Client{
		BaseURL:               strings.TrimSuffix(baseURL, "/"),
		HTTPClient:            &http.Client{Timeout: DefaultTimeout},
		MaxRetries:            DefaultMaxRetries,
		RetryDelay:            DefaultRetryDelay,
		MaxRetryDelay:         DefaultMaxRetryDelay,
		UseExponentialBackoff: true,
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// SetRetry configures retry behavior
func (c *Client) SetRetry(maxRetries int, retryDelay time.Duration) {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
}

// Ping checks that the display answers with its main menu.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Home(ctx)
	return err
}

// Home fetches the main menu.
func (c *Client) Home(ctx context.Context) (*PageResult, error) {
	res, err := c.do(ctx, http.MethodGet, pages.PathHome, "")
	if err != nil {
		return nil, err
	}
	if err := expect(res, pages.PathHome, pages.Home); err != nil {
		return nil, err
	}
	return res, nil
}

// DeviceID reads the display ID page.
func (c *Client) DeviceID(ctx context.Context) (string, error) {
	res, err := c.post(ctx, pages.PathDeviceID, "", pages.DeviceID)
	if err != nil {
		return "", err
	}
	return res.DeviceID, nil
}

// OpenForm opens the credentials form and returns the values it shows.
func (c *Client) OpenForm(ctx context.Context) (Credentials, error) {
	res, err := c.post(ctx, pages.PathImageServer, "", pages.ImageServerForm)
	if err != nil {
		return Credentials{}, err
	}
	return res.Form, nil
}

// SubmitCredentials validates creds locally and saves them on the display.
// The returned page is the main menu the display shows after a save.
func (c *Client) SubmitCredentials(ctx context.Context, creds Credentials) (*PageResult, error) {
	if errs := ValidateCredentials(creds); len(errs) > 0 {
		return nil, NewValidationError(FormatValidationErrors(errs), errs[0])
	}

	logging.Debug("Submitting credentials",
		zap.String("ssid", creds.SSID),
		zap.Int("password_len", len(creds.Password)),
		zap.String("server_url", creds.ServerURL),
	)
	return c.post(ctx, pages.PathSaveCredentials, creds.ToFormData(), pages.Home)
}

// ClearForm empties the pending form values and returns the blank form.
func (c *Client) ClearForm(ctx context.Context) (Credentials, error) {
	res, err := c.post(ctx, pages.PathResetCredentials, "", pages.ImageServerForm)
	if err != nil {
		return Credentials{}, err
	}
	return res.Form, nil
}

// CancelForm discards unsaved form values.
func (c *Client) CancelForm(ctx context.Context) error {
	_, err := c.post(ctx, pages.PathCancelCredentials, "", pages.Home)
	return err
}

// MasterReset confirms a factory reset of the display's stored values.
func (c *Client) MasterReset(ctx context.Context) error {
	if _, err := c.post(ctx, pages.PathMasterReset, "", pages.MasterResetConfirm); err != nil {
		return err
	}
	res, err := c.post(ctx, pages.PathResetConfirmed, "", pages.ResetResult)
	if err != nil {
		return err
	}
	if !res.ResetOK {
		return &DeviceError{Type: ErrTypeDevice, Message: PlainText(pages.ResetFailed), PageMessage: pages.MsgStorage}
	}
	return nil
}

// EnterDisplayMode confirms the switch to display mode. The display only
// offers it once all three credentials are stored.
func (c *Client) EnterDisplayMode(ctx context.Context) error {
	res, err := c.post(ctx, pages.PathDisplayConfirm, "", pages.ChangeModeConfirm, pages.Home)
	if err != nil {
		return err
	}
	if res.Page == pages.Home {
		return &DeviceError{Type: ErrTypeDevice, Message: "credentials are incomplete; display mode is not available"}
	}
	_, err = c.post(ctx, pages.PathDisplayMode, "", pages.ModeChanged)
	return err
}

func (c *Client) post(ctx context.Context, path, body string, want ...pages.Page) (*PageResult, error) {
	res, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	if err := expect(res, path, want...); err != nil {
		return nil, err
	}
	return res, nil
}

// expect maps pages other than want to errors.
func expect(res *PageResult, path string, want ...pages.Page) error {
	if slices.Contains(want, res.Page) {
		return nil
	}
	switch res.Page {
	case pages.NotFound:
		return NewNotFoundError(path)
	case pages.Error:
		return NewPageError(res.Message)
	}
	return NewParseError(fmt.Sprintf("expected %s page after /%s, got %s", want[0], path, res.Page), nil)
}

// do performs a request with retry and exponential backoff.
func (c *Client) do(ctx context.Context, method, path, body string) (*PageResult, error) {
	var lastErr error
	currentDelay := c.RetryDelay

	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, NewNetworkError("request cancelled", ctx.Err())
			case <-time.After(currentDelay):
			}

			if c.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > c.MaxRetryDelay {
					currentDelay = c.MaxRetryDelay
				}
			}
			logging.Debug("Retrying request", zap.String("path", path), zap.Int("attempt", attempt+1))
		}

		res, err := c.attempt(ctx, method, path, body)
		if err == nil {
			return res, nil
		}

		lastErr = err
		if !IsRetryable(err) || ctx.Err() != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

// attempt performs a single request. The display closes every connection
// after one response, so keep-alive is disabled.
func (c *Client) attempt(ctx context.Context, method, path, body string) (*PageResult, error) {
	var reader io.Reader
	if body != "" || method == http.MethodPost {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+"/"+path, reader)
	if err != nil {
		return nil, NewNetworkError(fmt.Sprintf("failed to create %s request", method), err)
	}
	req.Close = true
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, NewNetworkError(fmt.Sprintf("%s /%s failed", method, path), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, NewHTTPError(resp.StatusCode, fmt.Sprintf("unexpected status code: %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, NewNetworkError("failed to read response body", err)
	}

	res, err := ParsePage(data)
	if err != nil {
		return nil, err
	}
	logging.Debug("Page received",
		zap.String("path", path),
		zap.String("page", res.Page.String()),
		zap.Int("size", len(data)),
	)
	return res, nil
}
