// Package client is a Go client for the MentorMatch HTTP API. Client
// implements session.Authenticator, so a session.Store can run against a
// remote API exactly as it does against the in-process auth service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mentormatch/mentormatch-api/internal/models"
	"github.com/mentormatch/mentormatch-api/internal/session"
	apperrors "github.com/mentormatch/mentormatch-api/pkg/errors"
	"github.com/mentormatch/mentormatch-api/pkg/httpclient"
	"github.com/mentormatch/mentormatch-api/pkg/logger"
	"github.com/mentormatch/mentormatch-api/pkg/metrics"
	"github.com/mentormatch/mentormatch-api/pkg/retry"
	"go.uber.org/zap"
)

const (
	apiPrefix      = "/api/v1"
	maxErrorBody   = 4 << 10
	defaultTimeout = 30 * time.Second
)

// Decision mirrors the route guard decision returned by the API
type Decision struct {
	State    string            `json:"state"`
	Path     string            `json:"path"`
	Params   map[string]string `json:"params,omitempty"`
	Location string            `json:"location,omitempty"`
}

// Client calls the MentorMatch API
type Client struct {
	baseURL string
	http    httpclient.Client
	apiKey  string
	retry   retry.Config
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the transport
func WithHTTPClient(c httpclient.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithAPIKey sends key in the X-API-Key header of every request
func WithAPIKey(key string) Option {
	return func(cl *Client) { cl.apiKey = key }
}

// WithRetry overrides the retry policy used for reads
func WithRetry(cfg retry.Config) Option {
	return func(cl *Client) { cl.retry = cfg }
}

// New creates a Client for the API at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpclient.NewStandardClient(defaultTimeout),
		retry:   retry.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ session.Authenticator = (*Client)(nil)

// SignIn exchanges credentials for a session
func (c *Client) SignIn(ctx context.Context, email, password string) (*session.Session, error) {
	var resp models.SessionResponse
	err := c.send(ctx, http.MethodPost, "/auth/signin", "", models.SignInRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return toSession(&resp)
}

// SignUp registers an account and returns its session
func (c *Client) SignUp(ctx context.Context, email, password, fullName string) (*session.Session, error) {
	var resp models.SessionResponse
	req := models.SignUpRequest{Email: email, Password: password, FullName: fullName}
	if err := c.send(ctx, http.MethodPost, "/auth/signup", "", req, &resp); err != nil {
		return nil, err
	}
	return toSession(&resp)
}

// SignOut revokes token on the server
func (c *Client) SignOut(ctx context.Context, token string) error {
	return c.send(ctx, http.MethodPost, "/auth/signout", token, nil, nil)
}

// CurrentSession resolves token. A token the server no longer accepts
// yields (nil, nil).
func (c *Client) CurrentSession(ctx context.Context, token string) (*session.Session, error) {
	resp, err := getJSON[models.SessionResponse](ctx, c, "/auth/session", token)
	if err != nil {
		return nil, err
	}
	if resp.Identity == nil {
		return nil, nil
	}
	sess := &session.Session{Token: token, Identity: resp.Identity}
	if resp.ExpiresAt != nil {
		sess.ExpiresAt = *resp.ExpiresAt
	}
	return sess, nil
}

func toSession(resp *models.SessionResponse) (*session.Session, error) {
	if resp.Token == "" || resp.Identity == nil {
		return nil, apperrors.InternalError("session response without token or identity")
	}
	sess := &session.Session{Token: resp.Token, Identity: resp.Identity}
	if resp.ExpiresAt != nil {
		sess.ExpiresAt = *resp.ExpiresAt
	}
	return sess, nil
}

// ListMentors returns the browse list
func (c *Client) ListMentors(ctx context.Context, filter models.MentorListFilter) ([]*models.MentorProfile, error) {
	q := url.Values{}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.MaxRate > 0 {
		q.Set("maxRate", strconv.Itoa(filter.MaxRate))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}

	resp, err := getJSON[struct {
		Mentors []*models.MentorProfile `json:"mentors"`
	}](ctx, c, withQuery("/mentors", q), "")
	if err != nil {
		return nil, err
	}
	return resp.Mentors, nil
}

// GetMentor returns a mentor with recent reviews
func (c *Client) GetMentor(ctx context.Context, id string) (*models.MentorDetailResponse, error) {
	resp, err := getJSON[models.MentorDetailResponse](ctx, c, "/mentors/"+url.PathEscape(id), "")
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListBookings returns the caller's bookings on one side
func (c *Client) ListBookings(ctx context.Context, token string, side models.BookingSide) ([]models.Booking, error) {
	q := url.Values{}
	if side != "" {
		q.Set("side", string(side))
	}
	resp, err := getJSON[struct {
		Bookings []models.Booking `json:"bookings"`
	}](ctx, c, withQuery("/bookings", q), token)
	if err != nil {
		return nil, err
	}
	return resp.Bookings, nil
}

// CreateBooking books a slot; the response names the payment page
func (c *Client) CreateBooking(ctx context.Context, token string, req *models.CreateBookingRequest) (*models.CreateBookingResponse, error) {
	var resp models.CreateBookingResponse
	if err := c.send(ctx, http.MethodPost, "/bookings", token, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateBookingStatus moves a booking along its lifecycle
func (c *Client) UpdateBookingStatus(ctx context.Context, token, bookingID string, status models.BookingStatus) (*models.Booking, error) {
	var resp struct {
		Booking *models.Booking `json:"booking"`
	}
	path := "/bookings/" + url.PathEscape(bookingID) + "/status"
	if err := c.send(ctx, http.MethodPost, path, token, models.UpdateBookingStatusRequest{Status: status}, &resp); err != nil {
		return nil, err
	}
	return resp.Booking, nil
}

// Pay charges the booking. Cancelling ctx abandons the payment.
func (c *Client) Pay(ctx context.Context, token, bookingID, cardToken string) (*models.PayBookingResponse, error) {
	var resp models.PayBookingResponse
	path := "/bookings/" + url.PathEscape(bookingID) + "/pay"
	if err := c.send(ctx, http.MethodPost, path, token, models.PayBookingRequest{CardToken: cardToken}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitReview reviews a completed booking
func (c *Client) SubmitReview(ctx context.Context, token, bookingID string, req *models.SubmitReviewRequest) (*models.Review, error) {
	var resp struct {
		Review *models.Review `json:"review"`
	}
	path := "/bookings/" + url.PathEscape(bookingID) + "/review"
	if err := c.send(ctx, http.MethodPost, path, token, req, &resp); err != nil {
		return nil, err
	}
	return resp.Review, nil
}

// RegisterMentor grants the caller the mentor capability
func (c *Client) RegisterMentor(ctx context.Context, token string, req *models.RegisterMentorRequest) (*models.MentorProfile, error) {
	var resp struct {
		Mentor *models.MentorProfile `json:"mentor"`
	}
	if err := c.send(ctx, http.MethodPost, "/mentor/register", token, req, &resp); err != nil {
		return nil, err
	}
	return resp.Mentor, nil
}

// Resolve asks the route guard where path leads for the caller
func (c *Client) Resolve(ctx context.Context, token, path string) (*Decision, error) {
	d, err := getJSON[Decision](ctx, c, withQuery("/route", url.Values{"path": {path}}), token)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// getJSON retries transient failures; reads are safe to repeat. Each
// attempt decodes into a fresh T.
func getJSON[T any](ctx context.Context, c *Client, path, token string) (T, error) {
	return retry.DoWithResult(ctx, c.retry, "client_get", func() (T, error) {
		var out T
		err := c.send(ctx, http.MethodGet, path, token, nil, &out)
		return out, err
	})
}

func (c *Client) send(ctx context.Context, method, path, token string, body, out any) (err error) {
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		logger.LogAPICall(ctx, "mentormatch", method+" "+path, status, metrics.MeasureDuration(start), zap.Error(err))
	}()

	var reader io.Reader
	if body != nil {
		payload, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			return retry.Permanent(fmt.Errorf("failed to encode request body: %w", marshalErr))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, reader)
	if err != nil {
		return retry.Permanent(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer httpclient.Drain(resp)

	if resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return retry.Permanent(fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// statusError maps an API error response onto the error taxonomy.
// Client errors are final; server errors may be retried.
func statusError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&body) //nolint:errcheck
	msg := body.Error
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	var sentinel error
	switch resp.StatusCode {
	case http.StatusNotFound:
		sentinel = apperrors.ErrNotFound
	case http.StatusForbidden:
		sentinel = apperrors.ErrAccessDenied
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		sentinel = apperrors.ErrInvalidInput
	case http.StatusUnauthorized:
		sentinel = apperrors.ErrUnauthorized
	case http.StatusConflict:
		sentinel = apperrors.ErrConflict
	default:
		err := fmt.Errorf("api status %d: %s: %w", resp.StatusCode, msg, apperrors.ErrInternal)
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return err
		}
		return retry.Permanent(err)
	}
	return retry.Permanent(fmt.Errorf("%s: %w", msg, sentinel))
}
