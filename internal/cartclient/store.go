package cartclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shopcart/internal/domain"
)

// ErrUnavailable marks transient failures: connection errors and 5xx
// responses. Mutations fall back to local arithmetic on it; everything else
// is surfaced to the caller.
var ErrUnavailable = errors.New("cart service unavailable")

// RemoteStore talks to the cart API. The token func supplies the current
// bearer credential; it may return empty for anonymous owners.
type RemoteStore struct {
	baseURL string
	httpc   *http.Client
	token   func() string
}

func NewRemoteStore(baseURL string, httpc *http.Client, token func() string) *RemoteStore {
	if httpc == nil {
		httpc = &http.Client{Timeout: 10 * time.Second}
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &RemoteStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   httpc,
		token:   token,
	}
}

func (r *RemoteStore) Get(ctx context.Context, ownerKey string) (*domain.Cart, error) {
	return r.cartRequest(ctx, http.MethodGet, "/v1/carts/"+ownerKey, nil)
}

func (r *RemoteStore) AddItem(ctx context.Context, ownerKey, productID string, quantity int) (*domain.Cart, error) {
	body := map[string]interface{}{"productId": productID, "quantity": quantity}
	return r.cartRequest(ctx, http.MethodPost, "/v1/carts/"+ownerKey+"/items", body)
}

func (r *RemoteStore) UpdateItem(ctx context.Context, ownerKey, productID string, quantity int) (*domain.Cart, error) {
	body := map[string]interface{}{"quantity": quantity}
	return r.cartRequest(ctx, http.MethodPatch, "/v1/carts/"+ownerKey+"/items/"+productID, body)
}

func (r *RemoteStore) RemoveItem(ctx context.Context, ownerKey, productID string) (*domain.Cart, error) {
	return r.cartRequest(ctx, http.MethodDelete, "/v1/carts/"+ownerKey+"/items/"+productID, nil)
}

func (r *RemoteStore) Clear(ctx context.Context, ownerKey string) (*domain.Cart, error) {
	return r.cartRequest(ctx, http.MethodPost, "/v1/carts/"+ownerKey+"/clear", nil)
}

// Delete removes the cart document entirely. Used to clean up anonymous
// carts after a merge.
func (r *RemoteStore) Delete(ctx context.Context, ownerKey string) error {
	resp, err := r.do(ctx, http.MethodDelete, "/v1/carts/"+ownerKey, nil)
	if err != nil {
		return err
	}
	defer drain(resp)
	return statusError(resp)
}

func (r *RemoteStore) Checkout(ctx context.Context, ownerKey string) (*domain.Order, error) {
	resp, err := r.do(ctx, http.MethodPost, "/v1/carts/"+ownerKey+"/checkout", nil)
	if err != nil {
		return nil, err
	}
	defer drain(resp)
	if err := statusError(resp); err != nil {
		return nil, err
	}
	var out struct {
		Order domain.Order `json:"order"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode checkout response: %w", err)
	}
	return &out.Order, nil
}

// Merge asks the server to fold the anonymous cart into the account cart in
// one transaction.
func (r *RemoteStore) Merge(ctx context.Context, accountKey, anonymousID string) (*domain.Cart, error) {
	body := map[string]interface{}{"anonymousId": anonymousID}
	return r.cartRequest(ctx, http.MethodPost, "/v1/carts/"+accountKey+"/merge", body)
}

func (r *RemoteStore) cartRequest(ctx context.Context, method, path string, body interface{}) (*domain.Cart, error) {
	resp, err := r.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	defer drain(resp)
	if err := statusError(resp); err != nil {
		return nil, err
	}
	var cart domain.Cart
	if err := json.NewDecoder(resp.Body).Decode(&cart); err != nil {
		return nil, fmt.Errorf("decode cart response: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []domain.LineItem{}
	}
	return &cart, nil
}

func (r *RemoteStore) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := r.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := r.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

func statusError(resp *http.Response) error {
	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return domain.ErrUnauthenticated
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		return domain.ErrEmptyCart
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	default:
		return fmt.Errorf("request rejected: %s", readError(resp))
	}
}

func readError(resp *http.Response) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err == nil && body.Error != "" {
		return body.Error
	}
	return resp.Status
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
