// Package datasource loads historical game results per league from public
// schedule files and APIs.
package datasource

import (
	"context"
	"errors"

	"github.com/maschh/sports-edge/internal/models"
)

// GameSource defines the interface for fetching game results from an external provider
type GameSource interface {
	// FetchGames retrieves completed games for the inclusive season range, sorted by date
	FetchGames(ctx context.Context, startSeason, endSeason int) ([]models.Game, error)

	// League returns the league this source serves
	League() models.League

	// Name returns the name of the data source
	Name() string
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

// Unwrap returns the underlying error
func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error for the error code
func (e DataSourceError) Is(target error) bool {
	switch target {
	case ErrRateLimitExceeded:
		return e.Code == ErrCodeRateLimitExceeded
	case ErrAuthenticationFailed:
		return e.Code == ErrCodeAuthenticationFailed
	case ErrNotFound:
		return e.Code == ErrCodeNotFound
	case ErrInvalidData:
		return e.Code == ErrCodeInvalidData
	case ErrNetworkError:
		return e.Code == ErrCodeNetworkError
	case ErrServerError:
		return e.Code == ErrCodeServerError
	}
	return false
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeUnknown              = "unknown"
)

// Error constructors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("data not found")
	ErrInvalidData          = errors.New("invalid data format")
	ErrNetworkError         = errors.New("network error")
	ErrServerError          = errors.New("server error")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
