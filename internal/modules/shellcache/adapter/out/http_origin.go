package out

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"worktime/internal/modules/shellcache/domain"
	apperrors "worktime/internal/platform/errors"
)

const maxAssetBytes = 16 << 20

type HTTPOrigin struct {
	client   *http.Client
	maxBytes int64
}

func NewHTTPOrigin(timeout time.Duration) *HTTPOrigin {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPOrigin{client: &http.Client{Timeout: timeout}, maxBytes: maxAssetBytes}
}

// Fetch relays req to the network. Headers and body go through unchanged apart
// from hop-by-hop fields.
func (o *HTTPOrigin) Fetch(ctx context.Context, req domain.Request, reload bool) (domain.Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return domain.Response{}, fmt.Errorf("build origin request: %w", err)
	}
	copyHeader(httpReq.Header, req.Header)
	if reload {
		httpReq.Header.Set("Cache-Control", "no-cache")
		httpReq.Header.Set("Pragma", "no-cache")
	}
	resp, err := o.client.Do(httpReq)
	if err != nil {
		return domain.Response{}, fmt.Errorf("fetch %s: %w: %w", req.URL, apperrors.ErrUnavailable, err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(io.LimitReader(resp.Body, o.maxBytes+1))
	if err != nil {
		return domain.Response{}, fmt.Errorf("read %s: %w", req.URL, err)
	}
	if int64(len(payload)) > o.maxBytes {
		return domain.Response{}, fmt.Errorf("read %s: body exceeds %d bytes: %w", req.URL, o.maxBytes, apperrors.ErrUnavailable)
	}
	header := http.Header{}
	copyHeader(header, resp.Header)
	return domain.Response{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Header:      header,
		Body:        payload,
	}, nil
}

func copyHeader(dst, src http.Header) {
	for name, values := range src {
		if !domain.Forwardable(name) {
			continue
		}
		for _, v := range values {
			dst.Add(name, v)
		}
	}
}
