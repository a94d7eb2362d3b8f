package deepdub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Get performs a GET request against the REST API and decodes the JSON
// response into result.
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.doJSONRequest(ctx, http.MethodGet, path, nil, result)
}

// Post performs a POST request with a JSON body and decodes the JSON
// response into result.
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.doJSONRequest(ctx, http.MethodPost, path, body, result)
}

// Put performs a PUT request with a JSON body and decodes the JSON
// response into result.
func (c *Client) Put(ctx context.Context, path string, body, result any) error {
	return c.doJSONRequest(ctx, http.MethodPut, path, body, result)
}

// Delete performs a DELETE request and decodes the JSON response into
// result when one is expected.
func (c *Client) Delete(ctx context.Context, path string, result any) error {
	return c.doJSONRequest(ctx, http.MethodDelete, path, nil, result)
}

// doJSONRequest sends a JSON request and decodes a JSON response.
func (c *Client) doJSONRequest(ctx context.Context, method, path string, body, result any) error {
	respBody, _, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return wrapError(err, "unmarshal response")
		}
	}
	return nil
}

// doRequest sends a request and returns the raw response body and its
// content type. Non-2xx responses are mapped to *Error.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) ([]byte, string, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			return nil, "", wrapError(err, "marshal request body")
		}
		bodyReader = bytes.NewReader(jsonBytes)
	}

	url := c.config.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, "", wrapError(err, "create request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.config.apiKey)

	resp, err := c.config.httpClient.Do(req)
	if err != nil {
		return nil, "", transportError(err, "send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", transportError(err, "read response")
	}

	contentType := resp.Header.Get("Content-Type")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, contentType, parseAPIError(resp.StatusCode, respBody)
	}

	return respBody, contentType, nil
}

// parseAPIError maps a non-2xx REST response to *Error.
func parseAPIError(statusCode int, body []byte) error {
	var resp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	message := ""
	if err := json.Unmarshal(body, &resp); err == nil {
		if resp.Error != "" {
			message = resp.Error
		} else {
			message = resp.Message
		}
	}
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	if message == "" {
		message = fmt.Sprintf("unexpected status code: %d", statusCode)
	}
	return &Error{
		Kind:       KindApplication,
		Message:    message,
		HTTPStatus: statusCode,
	}
}
