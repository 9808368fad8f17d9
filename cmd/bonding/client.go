package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	httpinterface "github.com/tdex-network/tdex-bondingcurve/internal/interfaces/http"
)

const requestTimeout = 30 * time.Second

// client calls the HTTP interface of bondingd on behalf of the account
// identified by token.
type client struct {
	url   string
	token string
	http  *http.Client
}

func getClient() (*client, error) {
	state, err := getState()
	if err != nil {
		return nil, err
	}
	address, ok := state["rpcserver"]
	if !ok || address == "" {
		return nil, errors.New("set rpcserver with `config set rpcserver`")
	}
	if !strings.HasPrefix(address, "http://") &&
		!strings.HasPrefix(address, "https://") {
		address = "http://" + address
	}

	return &client{
		url:   strings.TrimSuffix(address, "/"),
		token: state["token"],
		http:  &http.Client{Timeout: requestTimeout},
	}, nil
}

func (c *client) get(path string, query url.Values, resp interface{}) error {
	if len(query) > 0 {
		path = path + "?" + query.Encode()
	}
	return c.do(http.MethodGet, path, nil, resp)
}

func (c *client) post(path string, req, resp interface{}) error {
	return c.do(http.MethodPost, path, req, resp)
}

func (c *client) put(path string, req, resp interface{}) error {
	return c.do(http.MethodPut, path, req, resp)
}

func (c *client) delete(path string, req, resp interface{}) error {
	return c.do(http.MethodDelete, path, req, resp)
}

// do sends req, if not nil, as the JSON body of the request and decodes the
// reply into resp. Replies with an error status are returned as errors.
func (c *client) do(method, path string, req, resp interface{}) error {
	var body io.Reader
	if req != nil {
		buf, err := json.Marshal(req)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, method, c.url+path, body)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("unable to connect to bondingd: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= http.StatusBadRequest {
		var e httpinterface.Error
		if err := json.NewDecoder(httpResp.Body).Decode(&e); err != nil {
			return fmt.Errorf("request failed with status %d", httpResp.StatusCode)
		}
		return fmt.Errorf("%s: %s", e.Code, e.Message)
	}

	if resp == nil {
		return nil
	}
	return json.NewDecoder(httpResp.Body).Decode(resp)
}
