package assethost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/folio-works/portfolio-backend/internal/metrics"
)

// CloudinaryConfig configures unsigned uploads.
type CloudinaryConfig struct {
	BaseURL      string
	CloudName    string
	UploadPreset string
	RateLimit    float64
	Hints        Hints
}

// CloudinaryClient uploads through the unsigned upload endpoint.
type CloudinaryClient struct {
	cfg        CloudinaryConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewCloudinaryClient creates a client. Deadlines come from the caller's
// context, so the http.Client carries no timeout of its own.
func NewCloudinaryClient(cfg CloudinaryConfig, log *zap.Logger) *CloudinaryClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.cloudinary.com/v1_1"
	}
	if cfg.Hints == (Hints{}) {
		cfg.Hints = DefaultHints()
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), int(cfg.RateLimit)+1)
	}

	return &CloudinaryClient{
		cfg:        cfg,
		httpClient: &http.Client{},
		limiter:    limiter,
		log:        log,
	}
}

func (c *CloudinaryClient) Provider() string { return "cloudinary" }

// Upload posts the file with the upload preset and hints and returns secure_url.
func (c *CloudinaryClient) Upload(ctx context.Context, u Upload) (string, error) {
	start := time.Now()
	ref, err := c.upload(ctx, u)

	status := "success"
	if err != nil {
		status = "error"
		c.log.Warn("asset upload failed", zap.String("filename", u.Filename), zap.Error(err))
	}
	metrics.RecordAssetUpload(c.Provider(), status, time.Since(start))

	return ref, err
}

func (c *CloudinaryClient) upload(ctx context.Context, u Upload) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	body, contentType, err := c.buildForm(u)
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}

	url := fmt.Sprintf("%s/%s/image/upload", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call asset host: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var parsed uploadResponse
	decodeErr := json.Unmarshal(raw, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := "Upload failed"
		if decodeErr == nil && parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return "", &HostError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", decodeErr)
	}
	if parsed.SecureURL == "" {
		return "", fmt.Errorf("asset host response has no secure_url")
	}

	return parsed.SecureURL, nil
}

func (c *CloudinaryClient) buildForm(u Upload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(u.Filename)))
	if u.ContentType != "" {
		h.Set("Content-Type", u.ContentType)
	} else {
		h.Set("Content-Type", "application/octet-stream")
	}
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, u.Body); err != nil {
		return nil, "", err
	}

	fields := [][2]string{
		{"upload_preset", c.cfg.UploadPreset},
		{"quality", c.cfg.Hints.Quality},
		{"fetch_format", c.cfg.Hints.FetchFormat},
		{"width", strconv.Itoa(c.cfg.Hints.MaxWidth)},
		{"crop", c.cfg.Hints.Crop},
		{"dpr", c.cfg.Hints.DPR},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
