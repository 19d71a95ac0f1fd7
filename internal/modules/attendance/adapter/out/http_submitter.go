package out

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"worktime/internal/modules/attendance/domain"
	apperrors "worktime/internal/platform/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxResponseBytes = 1 << 20

type HTTPSubmitter struct {
	baseURL   string
	csrfToken string
	client    *http.Client
}

func NewHTTPSubmitter(baseURL, csrfToken string, timeout time.Duration) *HTTPSubmitter {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPSubmitter{
		baseURL:   strings.TrimRight(baseURL, "/"),
		csrfToken: csrfToken,
		client:    &http.Client{Timeout: timeout},
	}
}

type submitResponse struct {
	Message      string `json:"message"`
	CheckInTime  string `json:"checkinTime"`
	CheckOutTime string `json:"checkoutTime"`
	ServerTime   string `json:"serverTime"`
}

func (s *HTTPSubmitter) Submit(ctx context.Context, kind domain.Kind, requestID string, payload domain.Payload) (domain.Result, error) {
	endpoint := kind.Endpoint()
	if endpoint == "" {
		return domain.Result{}, fmt.Errorf("%w: no endpoint for %q", apperrors.ErrInvalidInput, kind)
	}
	body, err := json.Marshal(wireBody(payload))
	if err != nil {
		return domain.Result{}, fmt.Errorf("encode %s payload: %w", kind, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Result{}, fmt.Errorf("build %s request: %w", kind, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-CSRF-TOKEN", s.csrfToken)
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.Result{}, &domain.SubmitError{Message: domain.MessageDefaultError, Err: fmt.Errorf("%s request: %w: %w", kind, apperrors.ErrUnavailable, err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.Result{}, &domain.SubmitError{Status: resp.StatusCode, Message: domain.MessageDefaultError, Err: fmt.Errorf("read %s response: %w", kind, err)}
	}
	// A body that is not JSON is treated as empty, the same as a missing message.
	var data submitResponse
	_ = json.Unmarshal(raw, &data)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := data.Message
		if message == "" {
			message = domain.MessageDefaultError
		}
		return domain.Result{}, &domain.SubmitError{
			Status:  resp.StatusCode,
			Message: message,
			Err:     fmt.Errorf("%s status %d: %w", kind, resp.StatusCode, statusError(resp.StatusCode)),
		}
	}
	return domain.Result{
		Message:      data.Message,
		CheckInTime:  data.CheckInTime,
		CheckOutTime: data.CheckOutTime,
		ServerTime:   parseServerTime(data.ServerTime),
	}, nil
}

func wireBody(payload domain.Payload) map[string]any {
	body := map[string]any{}
	if p := payload.Position; p != nil {
		body["lat"] = p.Lat
		body["lng"] = p.Lng
		body["accuracy"] = p.Accuracy
		body["position_timestamp"] = p.PositionTimestamp
		body["fix_age_ms"] = p.FixAgeMS
		body["address"] = p.Address
	}
	if payload.Photo != "" {
		body["photo"] = payload.Photo
	}
	return body
}

func statusError(code int) error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden || code == 419:
		return apperrors.ErrPermissionDenied
	case code >= 400 && code < 500:
		return apperrors.ErrActionNotAllowed
	default:
		return apperrors.ErrUnavailable
	}
}

func parseServerTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
