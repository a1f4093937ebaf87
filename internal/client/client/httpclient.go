package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/agahlya1812/memoboost/internal/client/models"
	"github.com/agahlya1812/memoboost/internal/common"
)

const maxResponseBytes = 32 << 20

// HTTPClient talks to the MemoBoost REST API. The session (user id and
// access token) is attached to every request once set.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu     sync.RWMutex
	userID string
	token  string
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) SetSession(userID, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = userID
	c.token = token
}

func (c *HTTPClient) session() (string, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID, c.token
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        any
	raw         []byte
	contentType string
	credentials bool
}

type response struct {
	header http.Header
	body   []byte
}

func (c *HTTPClient) send(ctx context.Context, r request) (*response, error) {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var body io.Reader
	contentType := r.contentType
	switch {
	case r.raw != nil:
		body = bytes.NewReader(r.raw)
	case r.body != nil:
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	userID, token := c.session()
	if userID != "" {
		req.Header.Set(common.UserIDHeaderName, userID)
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &e)
		return nil, &APIError{
			Status:  resp.StatusCode,
			Message: e.Error,
			Kind:    kindFor(resp.StatusCode, r.credentials),
		}
	}

	return &response{header: resp.Header, body: data}, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, r request, out any) error {
	resp, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	if out == nil || len(resp.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", r.method, r.path, err)
	}
	return nil
}

func itemPath(prefix, id string, suffix ...string) string {
	return prefix + "/" + url.PathEscape(id) + strings.Join(suffix, "")
}

type authResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

func (c *HTTPClient) Register(ctx context.Context, email, password, name string) (*models.User, string, error) {
	var resp authResponse
	err := c.doJSON(ctx, request{
		method:      http.MethodPost,
		path:        "/api/auth/register",
		body:        map[string]string{"email": email, "password": password, "name": name},
		credentials: true,
	}, &resp)
	if err != nil {
		return nil, "", err
	}
	return &resp.User, resp.Token, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	var resp authResponse
	err := c.doJSON(ctx, request{
		method:      http.MethodPost,
		path:        "/api/auth/login",
		body:        map[string]string{"email": email, "password": password},
		credentials: true,
	}, &resp)
	if err != nil {
		return nil, "", err
	}
	return &resp.User, resp.Token, nil
}

func (c *HTTPClient) Health(ctx context.Context) error {
	_, err := c.send(ctx, request{method: http.MethodGet, path: "/api/health"})
	return err
}

func (c *HTTPClient) State(ctx context.Context) (*models.State, error) {
	var s models.State
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: "/api/state"}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

type categoryBody struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
	Color    string  `json:"color,omitempty"`
}

func (c *HTTPClient) CreateCategory(ctx context.Context, name string, parentID *string, color string) (*models.Category, error) {
	var resp struct {
		Category *models.Category `json:"category"`
	}
	err := c.doJSON(ctx, request{
		method: http.MethodPost,
		path:   "/api/categories",
		body:   categoryBody{Name: name, ParentID: parentID, Color: color},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Category, nil
}

func (c *HTTPClient) UpdateCategory(ctx context.Context, id, name string, parentID *string, color string) (*models.Category, error) {
	var resp struct {
		Category *models.Category `json:"category"`
	}
	err := c.doJSON(ctx, request{
		method: http.MethodPut,
		path:   itemPath("/api/categories", id),
		body:   categoryBody{Name: name, ParentID: parentID, Color: color},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Category, nil
}

func (c *HTTPClient) DeleteCategory(ctx context.Context, id string) (*models.DeleteResult, error) {
	var res models.DeleteResult
	if err := c.doJSON(ctx, request{method: http.MethodDelete, path: itemPath("/api/categories", id)}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type cardResponse struct {
	Card *models.Card `json:"card"`
}

func (c *HTTPClient) CreateCard(ctx context.Context, in CardInput) (*models.Card, error) {
	var resp cardResponse
	if err := c.doJSON(ctx, request{method: http.MethodPost, path: "/api/cards", body: in}, &resp); err != nil {
		return nil, err
	}
	return resp.Card, nil
}

func (c *HTTPClient) UpdateCard(ctx context.Context, id string, in CardInput) (*models.Card, error) {
	var resp cardResponse
	if err := c.doJSON(ctx, request{method: http.MethodPut, path: itemPath("/api/cards", id), body: in}, &resp); err != nil {
		return nil, err
	}
	return resp.Card, nil
}

// UpdateCardStatus sends a status-only update. Servers without the status
// route answer 404 or 405; the full card is then sent with PUT, provided
// card carries every field PUT requires.
func (c *HTTPClient) UpdateCardStatus(ctx context.Context, card *models.Card, status models.MasteryStatus) (*models.Card, error) {
	var resp cardResponse
	err := c.doJSON(ctx, request{
		method: http.MethodPatch,
		path:   itemPath("/api/cards", card.ID, "/status"),
		body:   map[string]string{"masteryStatus": string(status)},
	}, &resp)
	if err == nil {
		return resp.Card, nil
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || (apiErr.Status != http.StatusNotFound && apiErr.Status != http.StatusMethodNotAllowed) {
		return nil, err
	}
	if card.Question == "" || card.Answer == "" || card.CategoryID == "" {
		return nil, err
	}

	return c.UpdateCard(ctx, card.ID, CardInput{
		Question:      card.Question,
		Answer:        card.Answer,
		CategoryID:    card.CategoryID,
		MasteryStatus: status,
	})
}

func (c *HTTPClient) DeleteCard(ctx context.Context, id string) error {
	_, err := c.send(ctx, request{method: http.MethodDelete, path: itemPath("/api/cards", id)})
	return err
}

// Export returns the exported document and the file name the server
// suggested for it.
func (c *HTTPClient) Export(ctx context.Context, format string) ([]byte, string, error) {
	resp, err := c.send(ctx, request{
		method: http.MethodGet,
		path:   "/api/export",
		query:  url.Values{"format": {format}},
	})
	if err != nil {
		return nil, "", err
	}

	name := "memoboost-export." + format
	if _, params, err := mime.ParseMediaType(resp.header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}
	return resp.body, name, nil
}

func (c *HTTPClient) Import(ctx context.Context, format string, data []byte) (*models.ImportResult, error) {
	contentType := "application/json"
	if format == "csv" {
		contentType = "text/csv"
	}

	var res models.ImportResult
	err := c.doJSON(ctx, request{
		method:      http.MethodPost,
		path:        "/api/import",
		query:       url.Values{"format": {format}},
		raw:         data,
		contentType: contentType,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) CreateImageUpload(ctx context.Context, cardID, contentType string) (*models.ImageUpload, error) {
	var up models.ImageUpload
	err := c.doJSON(ctx, request{
		method: http.MethodPost,
		path:   itemPath("/api/cards", cardID, "/image"),
		body:   map[string]string{"contentType": contentType},
	}, &up)
	if err != nil {
		return nil, err
	}
	return &up, nil
}

func (c *HTTPClient) ImageURL(ctx context.Context, cardID string) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: itemPath("/api/cards", cardID, "/image")}, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}
