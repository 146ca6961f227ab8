// Package assethost talks to the remote image host. A Gateway accepts one file
// and returns a stable reference string; it never retries.
package assethost

import (
	"context"
	"fmt"
	"io"
)

// Upload is a single file handed to the host.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// Hints are server-side optimization parameters sent with every upload.
type Hints struct {
	MaxWidth    int
	Quality     string
	FetchFormat string
	Crop        string
	DPR         string
}

// DefaultHints caps width at 1200 and lets the host pick quality, format and
// pixel density.
func DefaultHints() Hints {
	return Hints{
		MaxWidth:    1200,
		Quality:     "auto:good",
		FetchFormat: "auto",
		Crop:        "limit",
		DPR:         "auto",
	}
}

// Gateway uploads a file and returns its reference.
type Gateway interface {
	Upload(ctx context.Context, u Upload) (string, error)
	Provider() string
}

// HostError is a rejection reported by the host itself.
type HostError struct {
	StatusCode int
	Message    string
}

func (e *HostError) Error() string {
	return fmt.Sprintf("asset host returned status %d: %s", e.StatusCode, e.Message)
}
