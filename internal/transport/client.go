package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net"
	"net/url"
	"strings"
	"time"

	"coreader-client/internal/constant"
	"coreader-client/internal/dto"
	"coreader-client/internal/pkg/logger"

	"github.com/fasthttp/websocket"
	"github.com/go-playground/validator/v10"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "coreader-client/transport"

type Options struct {
	ServerURL   string
	Protocol    string
	HTTPTimeout time.Duration
	DialTimeout time.Duration
	IdleTimeout time.Duration // 0 disables the stream idle timeout
}

// Client talks to the document QA backend: short request/response calls over
// fasthttp and one WebSocket channel per query.
type Client struct {
	http        *fasthttp.Client
	dialer      *websocket.Dialer
	baseURL     string
	streamURL   string
	timeout     time.Duration
	idleTimeout time.Duration
	validate    *validator.Validate
	tracer      trace.Tracer
	logger      logger.ILogger
}

func NewClient(opts Options, log logger.ILogger) (*Client, error) {
	baseURL, err := normalizeServerURL(opts.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	streamURL := "ws" + strings.TrimPrefix(baseURL, "http") + endpointStream
	if opts.Protocol == constant.StreamProtocolTagged {
		streamURL += taggedProtocolQuery
	}

	dialTimeout := opts.DialTimeout
	return &Client{
		http: &fasthttp.Client{
			Name:                "coreader-client",
			ReadTimeout:         opts.HTTPTimeout,
			WriteTimeout:        opts.HTTPTimeout,
			MaxIdleConnDuration: 60 * time.Second,
			Dial: func(addr string) (net.Conn, error) {
				return fasthttp.DialTimeout(addr, dialTimeout)
			},
		},
		dialer: &websocket.Dialer{
			HandshakeTimeout: dialTimeout,
		},
		baseURL:     baseURL,
		streamURL:   streamURL,
		timeout:     opts.HTTPTimeout,
		idleTimeout: opts.IdleTimeout,
		validate:    validator.New(),
		tracer:      otel.Tracer(tracerName),
		logger:      log,
	}, nil
}

// normalizeServerURL adds a scheme when missing and drops the trailing slash.
func normalizeServerURL(server string) (string, error) {
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}

	u, err := url.Parse(server)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in %q", server)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	return fmt.Sprintf("%s://%s%s", u.Scheme, u.Host, strings.TrimSuffix(u.Path, "/")), nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListFiles fetches the authoritative file set.
func (c *Client) ListFiles(ctx context.Context) ([]dto.UploadedFileDTO, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(c.baseURL + endpointListFiles)

	if err := c.do(ctx, "ListFiles", req, resp); err != nil {
		return nil, err
	}

	var out dto.GetUploadedFilesResponse
	if err := c.decode(resp.Body(), &out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

// UploadFile sends content as a multipart form under field "file".
func (c *Client) UploadFile(ctx context.Context, name string, content []byte) (*dto.UploadFileResponse, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(uploadFormField, name)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI(c.baseURL + endpointUploadFile)
	req.Header.SetContentType(w.FormDataContentType())
	req.SetBody(body.Bytes())

	if err := c.do(ctx, "UploadFile", req, resp, attribute.String("file.name", name)); err != nil {
		return nil, err
	}

	var out dto.UploadFileResponse
	if err := c.decode(resp.Body(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ToggleFileStatus(ctx context.Context, fileID string, isActive bool) error {
	payload, err := json.Marshal(dto.ToggleFileStatusRequest{FileId: fileID, IsActive: &isActive})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI(c.baseURL + endpointToggleFile)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	return c.do(ctx, "ToggleFileStatus", req, resp,
		attribute.String("file.id", fileID), attribute.Bool("file.is_active", isActive))
}

func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodDelete)
	req.SetRequestURI(c.baseURL + fmt.Sprintf(endpointDeleteFile, url.PathEscape(fileID)))

	return c.do(ctx, "DeleteFile", req, resp, attribute.String("file.id", fileID))
}

// ClearMemory asks the backend to forget the conversation. No body contract.
func (c *Client) ClearMemory(ctx context.Context) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI(c.baseURL + endpointClearMemory)

	return c.do(ctx, "ClearMemory", req, resp)
}

// do executes one exchange bounded by the client timeout and ctx's deadline.
// Non-2xx responses become *StatusError.
func (c *Client) do(ctx context.Context, op string, req *fasthttp.Request, resp *fasthttp.Response, attrs ...attribute.KeyValue) error {
	ctx, span := c.tracer.Start(ctx, "transport."+op, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return err
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		c.logger.Warn("Transport", "Request failed", map[string]interface{}{"op": op, "error": err})
		return fmt.Errorf("%s request failed: %w", op, err)
	}

	code := resp.StatusCode()
	span.SetAttributes(attribute.Int("http.status_code", code))
	if code < 200 || code >= 300 {
		statusErr := newStatusError(code, resp.Body())
		span.SetStatus(codes.Error, statusErr.Reason())
		c.logger.Info("Transport", "Backend rejected request", map[string]interface{}{
			"op": op, "status": code, "reason": statusErr.Reason(),
		})
		return statusErr
	}
	return nil
}

func (c *Client) decode(body []byte, out interface{}) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if err := c.validate.Struct(out); err != nil {
		return fmt.Errorf("malformed response: %w", err)
	}
	return nil
}
