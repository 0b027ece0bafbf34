// Package httpclient provides a primesclient.Client implementation that talks
// to a primes server over its HTTP v1 API.
package httpclient

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"primes/pkg/domain"
	"primes/pkg/primality"
	"primes/pkg/primesclient"
	"primes/pkg/serrors"
	"strconv"
	"strings"

	"github.com/go-faster/jx"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 1 << 16

// Client talks to the primes REST API and fulfills the primesclient.Client
// interface. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client // httpClient performs HTTP requests to the server
	baseURL    *url.URL     // baseURL is the server root, e.g. http://localhost:8080
	token      string       // token is the bearer JWT sent with scan requests
}

// Ensure Client conforms to the primesclient.Client interface at compile time.
var _ primesclient.Client = (*Client)(nil)

// New constructs a Client for the server at baseURL. The token may be empty
// when only the public endpoints are used.
func New(httpClient *http.Client, baseURL, token string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("could not parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, serrors.With(serrors.ErrBadRequest, "base url must be absolute: %q", baseURL)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{httpClient: httpClient, baseURL: u, token: token}, nil
}

func (c *Client) newRequest(ctx context.Context, method string, q url.Values, body io.Reader, path ...string) (*http.Request, error) {
	u := c.baseURL.JoinPath(path...)
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	return req, nil
}

// do sends req and returns the body of a 2xx response. Other responses are
// decoded into a semantic error.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, responseError(resp)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	return b, nil
}

func rangeQuery(r primality.Range) url.Values {
	return url.Values{
		"upper":     {strconv.FormatInt(r.Upper, 10)},
		"inclusive": {strconv.FormatBool(r.Inclusive)},
	}
}

// Check asks the server whether n is prime.
func (c *Client) Check(ctx context.Context, n int64) (bool, error) {
	req, err := c.newRequest(ctx, http.MethodGet, nil, nil, "v1", "primes", strconv.FormatInt(n, 10))
	if err != nil {
		return false, err
	}

	b, err := c.do(req)
	if err != nil {
		return false, err
	}

	var prime bool
	if err := jx.DecodeBytes(b).Obj(func(d *jx.Decoder, key string) error {
		if key != "prime" {
			return d.Skip()
		}
		v, err := d.Bool()
		prime = v

		return err
	}); err != nil {
		return false, fmt.Errorf("could not decode response: %w", err)
	}

	return prime, nil
}

// Primes scans r on the server and returns the decoded result.
func (c *Client) Primes(ctx context.Context, r primality.Range) (primality.Result, error) {
	req, err := c.newRequest(ctx, http.MethodGet, rangeQuery(r), nil, "v1", "primes")
	if err != nil {
		return primality.Result{}, err
	}

	b, err := c.do(req)
	if err != nil {
		return primality.Result{}, err
	}

	res, err := decodeResult(jx.DecodeBytes(b))
	if err != nil {
		return primality.Result{}, fmt.Errorf("could not decode response: %w", err)
	}

	return res, nil
}

// StreamPrimes requests the text rendition of the scan and calls emit for each
// line as it arrives. Primes emitted before an interruption stay valid; the
// returned error then carries the kind the server reported.
func (c *Client) StreamPrimes(ctx context.Context, r primality.Range, emit func(int64)) error {
	q := rangeQuery(r)
	q.Set("format", "text")
	req, err := c.newRequest(ctx, http.MethodGet, q, nil, "v1", "primes")
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return responseError(resp)
	}

	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		p, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return fmt.Errorf("could not parse prime %q: %w", line, err)
		}
		if emit != nil {
			emit(p)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("could not read primes: %w", err)
	}

	// trailers are only populated once the body hit EOF
	return streamError(resp.Trailer)
}

// CreateScan enqueues a scan of r. The returned scan is already COMPLETED when
// the server reused a previous result.
func (c *Client) CreateScan(ctx context.Context, r primality.Range) (*domain.Scan, error) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	e.ObjStart()
	e.FieldStart("upper")
	e.Int64(r.Upper)
	e.FieldStart("inclusive")
	e.Bool(r.Inclusive)
	e.ObjEnd()

	req, err := c.newRequest(ctx, http.MethodPost, nil, bytes.NewReader(e.Bytes()), "v1", "scans")
	if err != nil {
		return nil, err
	}

	return c.doScan(req)
}

// Scan fetches a persisted scan. Unknown or foreign scans yield ErrNotFound.
func (c *Client) Scan(ctx context.Context, id domain.ScanID) (*domain.Scan, error) {
	req, err := c.newRequest(ctx, http.MethodGet, nil, nil, "v1", "scans", id.String())
	if err != nil {
		return nil, err
	}

	return c.doScan(req)
}

func (c *Client) doScan(req *http.Request) (*domain.Scan, error) {
	b, err := c.do(req)
	if err != nil {
		return nil, err
	}

	s, err := decodeScan(jx.DecodeBytes(b))
	if err != nil {
		return nil, fmt.Errorf("could not decode response: %w", err)
	}

	return &s, nil
}

// Scans fetches one page of the caller's scans.
func (c *Client) Scans(ctx context.Context, opts primesclient.ListOptions) (primesclient.ScanList, error) {
	q := url.Values{}
	if opts.Status != "" {
		q.Set("status", string(opts.Status))
	}
	if opts.Cursor != "" {
		q.Set("cursor", opts.Cursor)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.FormatUint(uint64(opts.Limit), 10))
	}

	req, err := c.newRequest(ctx, http.MethodGet, q, nil, "v1", "scans")
	if err != nil {
		return primesclient.ScanList{}, err
	}

	b, err := c.do(req)
	if err != nil {
		return primesclient.ScanList{}, err
	}

	list, err := decodeScanList(jx.DecodeBytes(b))
	if err != nil {
		return primesclient.ScanList{}, fmt.Errorf("could not decode response: %w", err)
	}

	return list, nil
}

// DeleteScan removes a persisted scan.
func (c *Client) DeleteScan(ctx context.Context, id domain.ScanID) error {
	req, err := c.newRequest(ctx, http.MethodDelete, nil, nil, "v1", "scans", id.String())
	if err != nil {
		return err
	}

	_, err = c.do(req)

	return err
}
