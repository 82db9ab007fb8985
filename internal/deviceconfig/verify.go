package deviceconfig

import (
	"context"
	"fmt"
	"time"
)

// VerificationOptions configures how credential verification behaves
type VerificationOptions struct {
	// MaxRetries is the maximum number of verification attempts
	// Default: 3
	MaxRetries int

	// InitialDelay is the delay before the first verification attempt
	// Default: 200ms
	InitialDelay time.Duration

	// RetryDelay is the delay between retry attempts
	// Default: 1s
	RetryDelay time.Duration

	// UseExponentialBackoff doubles each retry delay up to MaxRetryDelay
	// Default: true
	UseExponentialBackoff bool

	// MaxRetryDelay is the maximum delay between retries when using exponential backoff
	// Default: 5s
	MaxRetryDelay time.Duration
}

// DefaultVerificationOptions returns sensible defaults for verification
func DefaultVerificationOptions() *VerificationOptions {
	return &VerificationOptions{
		MaxRetries:            3,
		InitialDelay:          200 * time.Millisecond,
		RetryDelay:            1 * time.Second,
		UseExponentialBackoff: true,
		MaxRetryDelay:         5 * time.Second,
	}
}

// VerificationResult contains the results of a credential verification
type VerificationResult struct {
	// Success indicates whether verification succeeded
	Success bool

	// Attempts is the number of attempts made
	Attempts int

	// Actual is what the display's form shows
	Actual Credentials

	// Mismatches lists all detected mismatches between expected and actual values
	Mismatches []string

	// Error is any error that occurred during verification
	Error error
}

// VerifyCredentials reopens the form and checks that it shows expected.
// The form is filled from the values the display last stored, so a match
// means the save reached flash.
func (c *Client) VerifyCredentials(ctx context.Context, expected Credentials, opts *VerificationOptions) *VerificationResult {
	if opts == nil {
		opts = DefaultVerificationOptions()
	}

	result := &VerificationResult{Mismatches: []string{}}

	if !sleepCtx(ctx, opts.InitialDelay) {
		result.Error = ctx.Err()
		return result
	}

	currentDelay := opts.RetryDelay

	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		result.Attempts++

		if attempt > 0 {
			if !sleepCtx(ctx, currentDelay) {
				result.Error = ctx.Err()
				return result
			}
			if opts.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > opts.MaxRetryDelay {
					currentDelay = opts.MaxRetryDelay
				}
			}
		}

		actual, err := c.OpenForm(ctx)
		if err != nil {
			result.Error = fmt.Errorf("attempt %d: failed to open form: %w", attempt+1, err)
			continue
		}

		result.Actual = actual
		result.Mismatches = credentialMismatches(expected, actual)

		if len(result.Mismatches) == 0 {
			result.Success = true
			result.Error = nil
			// leave the display on its main menu
			if err := c.CancelForm(ctx); err != nil {
				result.Error = fmt.Errorf("verified, but returning to the main menu failed: %w", err)
			}
			return result
		}

		if attempt < opts.MaxRetries {
			result.Error = fmt.Errorf("attempt %d: values mismatch (will retry)", attempt+1)
		} else {
			result.Error = fmt.Errorf("verification failed after %d attempts: %s", result.Attempts, formatMismatches(result.Mismatches))
		}
	}

	return result
}

// credentialMismatches compares expected with what the display shows.
func credentialMismatches(expected, actual Credentials) []string {
	var mismatches []string
	if actual.SSID != expected.SSID {
		mismatches = append(mismatches, fmt.Sprintf("network name: expected %q, got %q", expected.SSID, actual.SSID))
	}
	if actual.Password != expected.Password {
		mismatches = append(mismatches, fmt.Sprintf("password: expected %d characters, got %d", len(expected.Password), len(actual.Password)))
	}
	if actual.ServerURL != expected.ServerURL {
		mismatches = append(mismatches, fmt.Sprintf("image server: expected %q, got %q", expected.ServerURL, actual.ServerURL))
	}
	return mismatches
}

// formatMismatches creates a human-readable summary of mismatches
func formatMismatches(mismatches []string) string {
	if len(mismatches) == 0 {
		return "none"
	}
	if len(mismatches) == 1 {
		return mismatches[0]
	}
	result := fmt.Sprintf("%d mismatches: ", len(mismatches))
	for i, m := range mismatches {
		if i > 0 {
			result += "; "
		}
		result += m
	}
	return result
}

// SubmitAndVerify saves creds and confirms the display stored them.
func (c *Client) SubmitAndVerify(ctx context.Context, creds Credentials, opts *VerificationOptions) *VerificationResult {
	if _, err := c.SubmitCredentials(ctx, creds); err != nil {
		return &VerificationResult{
			Error: fmt.Errorf("submit failed: %w", err),
		}
	}
	return c.VerifyCredentials(ctx, creds, opts)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
