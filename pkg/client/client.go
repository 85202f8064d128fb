// Package client talks to the catalog HTTP service. A Client satisfies the
// console's Catalog interface, so the menu can drive a remote library.
//
// Every request runs through a circuit breaker. Borrow and return requests
// that never reached the service are parked in a retry queue and replayed,
// oldest first, before the next operation.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"library_catalog/pkg/catalog"
	"library_catalog/pkg/circuitbreaker"
	"library_catalog/pkg/httpapi"
	"library_catalog/pkg/models"
	"library_catalog/pkg/queue"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrServiceUnavailable = errors.New("catalog service unavailable")
	ErrQueued             = errors.New("request queued for retry")
)

const (
	actionBorrow = "borrow"
	actionReturn = "return"
)

type Options struct {
	Timeout        time.Duration
	MaxFailures    int
	BreakerTimeout time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	retries    *queue.Queue
	maxRetries int
	backoff    time.Duration
	now        func() time.Time
}

func New(baseURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: opts.Timeout},
		breaker:    circuitbreaker.NewCircuitBreaker(opts.MaxFailures, opts.BreakerTimeout),
		retries:    queue.NewQueue(),
		maxRetries: opts.MaxRetries,
		backoff:    opts.RetryBackoff,
		now:        time.Now,
	}
}

type response struct {
	status int
	body   []byte
}

type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("catalog service returned %d: %s", e.status, e.body)
}

type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (c *Client) Add(title, author string, year uint32) (uint64, error) {
	c.RetryPending()

	resp, err := c.send(http.MethodPost, "/api/v1/books", map[string]interface{}{
		"title":  title,
		"author": author,
		"year":   year,
	})
	if err != nil {
		return 0, err
	}
	if resp.status != http.StatusCreated {
		return 0, unexpected(resp)
	}
	var book models.Book
	if err := json.Unmarshal(resp.body, &book); err != nil {
		return 0, errors.Wrap(err, "failed to decode the response")
	}
	return book.ID, nil
}

func (c *Client) Remove(id uint64) (bool, error) {
	c.RetryPending()

	resp, err := c.send(http.MethodDelete, bookPath(id), nil)
	if err != nil {
		return false, err
	}
	switch resp.status {
	case http.StatusNoContent:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	}
	return false, unexpected(resp)
}

func (c *Client) FindByID(id uint64) (models.Book, bool, error) {
	c.RetryPending()

	resp, err := c.send(http.MethodGet, bookPath(id), nil)
	if err != nil {
		return models.Book{}, false, err
	}
	switch resp.status {
	case http.StatusOK:
		var book models.Book
		if err := json.Unmarshal(resp.body, &book); err != nil {
			return models.Book{}, false, errors.Wrap(err, "failed to decode the response")
		}
		return book, true, nil
	case http.StatusNotFound:
		return models.Book{}, false, nil
	}
	return models.Book{}, false, unexpected(resp)
}

func (c *Client) FindByTitle(title string) ([]models.Book, error) {
	return c.list("?title=" + url.QueryEscape(title))
}

func (c *Client) FindByAuthor(author string) ([]models.Book, error) {
	return c.list("?author=" + url.QueryEscape(author))
}

func (c *Client) ListAll() ([]models.Book, error) {
	return c.list("")
}

func (c *Client) Count() (int, error) {
	c.RetryPending()

	resp, err := c.send(http.MethodGet, "/api/v1/books/count", nil)
	if err != nil {
		return 0, err
	}
	if resp.status != http.StatusOK {
		return 0, unexpected(resp)
	}
	var body struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(resp.body, &body); err != nil {
		return 0, errors.Wrap(err, "failed to decode the response")
	}
	return body.Count, nil
}

// Borrow asks the service to loan the book out. If the service cannot be
// reached the request is queued and ErrQueued is returned.
func (c *Client) Borrow(id uint64) error {
	c.RetryPending()
	return c.mutate(actionBorrow, id)
}

// Return is the counterpart of Borrow.
func (c *Client) Return(id uint64) error {
	c.RetryPending()
	return c.mutate(actionReturn, id)
}

// Pending is the number of queued borrow/return requests.
func (c *Client) Pending() int {
	return c.retries.Size()
}

// RetryPending replays every queued request that is due. Requests that reach
// the service are dropped whatever the answer; the rest are pushed back with
// a longer delay until their retries run out. It returns how many requests
// were delivered.
func (c *Client) RetryPending() int {
	now := c.now()
	var due []*queue.RetryRequest
	for req := c.retries.Dequeue(now); req != nil; req = c.retries.Dequeue(now) {
		due = append(due, req)
	}

	delivered := 0
	for _, req := range due {
		err := c.replay(req)
		if err == nil || !isTransient(err) {
			if err != nil {
				log.Printf("Queued %s of book %d rejected: %v", req.Action, req.BookID, err)
			}
			delivered++
			continue
		}

		req.RetryCount++
		if req.Exhausted() {
			log.Printf("Dropping queued %s of book %d after %d attempts: %v", req.Action, req.BookID, req.RetryCount, err)
			continue
		}
		req.RetryAt = now.Add(c.backoff * time.Duration(req.RetryCount+1))
		c.retries.Enqueue(req)
	}
	return delivered
}

func (c *Client) replay(req *queue.RetryRequest) error {
	resp, err := c.send(http.MethodPost, bookPath(req.BookID)+"/"+req.Action, nil)
	if err != nil {
		return err
	}
	return transitionResult(resp)
}

func (c *Client) mutate(action string, id uint64) error {
	resp, err := c.send(http.MethodPost, bookPath(id)+"/"+action, nil)
	if err != nil {
		if isTransient(err) && c.maxRetries > 0 {
			c.retries.Enqueue(&queue.RetryRequest{
				ID:         uuid.New().String(),
				Action:     action,
				BookID:     id,
				RetryAt:    c.now().Add(c.backoff),
				MaxRetries: c.maxRetries,
			})
			log.Printf("Queued %s of book %d for retry: %v", action, id, err)
			return errors.Wrapf(ErrQueued, "%s book %d", action, id)
		}
		return err
	}
	return transitionResult(resp)
}

func (c *Client) list(query string) ([]models.Book, error) {
	c.RetryPending()

	resp, err := c.send(http.MethodGet, "/api/v1/books"+query, nil)
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, unexpected(resp)
	}
	var body struct {
		Items []models.Book `json:"items"`
	}
	if err := json.Unmarshal(resp.body, &body); err != nil {
		return nil, errors.Wrap(err, "failed to decode the response")
	}
	if body.Items == nil {
		body.Items = []models.Book{}
	}
	return body.Items, nil
}

// send performs one request through the breaker. Transport failures and 5xx
// answers count against the breaker; any other status is returned as is.
func (c *Client) send(method, path string, payload interface{}) (*response, error) {
	var resp *response
	err := c.breaker.Execute(func() error {
		r, err := c.roundTrip(method, path, payload)
		if err != nil {
			return err
		}
		resp = r
		if r.status >= http.StatusBadRequest {
			return &statusError{status: r.status, body: string(r.body)}
		}
		return nil
	}, tripsBreaker)

	var se *statusError
	if errors.As(err, &se) && se.status < http.StatusInternalServerError {
		return resp, nil
	}
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return nil, errors.Wrap(ErrServiceUnavailable, err.Error())
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// tripsBreaker is true for transport errors and 5xx answers.
func tripsBreaker(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.status >= http.StatusInternalServerError
	}
	return true
}

func (c *Client) roundTrip(method, path string, payload interface{}) (*response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create request body")
		}
		body = bytes.NewReader(data)
	}

	request, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create the request")
	}
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	r, err := c.httpClient.Do(request)
	if err != nil {
		return nil, errors.Wrap(err, "failed to perform the request")
	}
	defer r.Body.Close()

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read the response")
	}
	return &response{status: r.StatusCode, body: data}, nil
}

func transitionResult(resp *response) error {
	switch resp.status {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return catalog.ErrBookNotFound
	case http.StatusConflict:
		var body apiError
		_ = json.Unmarshal(resp.body, &body)
		switch body.Code {
		case httpapi.CodeBookUnavailable:
			return catalog.ErrBookUnavailable
		case httpapi.CodeBookNotBorrowed:
			return catalog.ErrBookNotBorrowed
		}
	}
	return unexpected(resp)
}

// isTransient reports whether the request never got an answer from the
// service: transport errors and an open breaker, but not 5xx responses.
func isTransient(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return false
	}
	if errors.Is(err, catalog.ErrBookNotFound) ||
		errors.Is(err, catalog.ErrBookUnavailable) ||
		errors.Is(err, catalog.ErrBookNotBorrowed) {
		return false
	}
	var ue *unexpectedStatus
	return !errors.As(err, &ue)
}

type unexpectedStatus struct {
	status int
	body   string
}

func (e *unexpectedStatus) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.status, e.body)
}

func unexpected(resp *response) error {
	return &unexpectedStatus{status: resp.status, body: string(resp.body)}
}

func bookPath(id uint64) string {
	return "/api/v1/books/" + strconv.FormatUint(id, 10)
}
