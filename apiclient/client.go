// Package apiclient - типизированный клиент удалённого REST API турниров.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/Dosada05/tournament-admin/models"
)

type Options struct {
	BaseURL string
	Timeout time.Duration
}

// Client не хранит токен: его передаёт каждый вызов из сессии пользователя.
type Client struct {
	o    Options
	http *http.Client
}

// New создаёт клиента. Если httpClient == nil, используется клиент с o.Timeout.
func New(o Options, httpClient *http.Client) *Client {
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.Timeout}
	}
	return &Client{o: o, http: httpClient}
}

func (c *Client) newRequest(ctx context.Context, token, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.o.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request) ([]byte, http.Header, error) {
	rsp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("send request: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, rsp.Body)
		_ = rsp.Body.Close()
	}()
	data, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}
	if rsp.StatusCode < 200 || rsp.StatusCode > 299 {
		return nil, nil, decodeError(rsp.StatusCode, data)
	}
	return data, rsp.Header, nil
}

func decodeBody[Rsp any](data []byte) (*Rsp, error) {
	rsp := new(Rsp)
	if len(bytes.TrimSpace(data)) == 0 {
		return rsp, nil
	}
	if err := json.Unmarshal(data, rsp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return rsp, nil
}

// doJSON выполняет JSON запрос. req == nil означает запрос без тела.
func doJSON[Req any, Rsp any](ctx context.Context, c *Client, token, method, path string, req *Req) (*Rsp, error) {
	var body io.Reader
	if req != nil {
		data, err := json.Marshal(req)
		if err != nil {
			return nil, fmt.Errorf("marshal json: %w", err)
		}
		body = bytes.NewReader(data)
	}
	hReq, err := c.newRequest(ctx, token, method, path, body)
	if err != nil {
		return nil, err
	}
	if req != nil {
		hReq.Header.Set("Content-Type", "application/json")
	}
	data, _, err := c.send(hReq)
	if err != nil {
		return nil, err
	}
	return decodeBody[Rsp](data)
}

func doGet[Rsp any](ctx context.Context, c *Client, token, path string) (*Rsp, error) {
	return doJSON[struct{}, Rsp](ctx, c, token, http.MethodGet, path, nil)
}

type formFile struct {
	field string
	file  *models.FileUpload
}

// quoteEscaper экранирует имена в Content-Disposition так же, как multipart.CreateFormFile.
var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func doMultipart[Rsp any](ctx context.Context, c *Client, token, path string, fields map[string]string, files ...formFile) (*Rsp, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	for _, f := range files {
		if f.file == nil {
			continue
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(f.field), quoteEscaper.Replace(f.file.Filename)))
		ct := f.file.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("create part %s: %w", f.field, err)
		}
		if _, err := io.Copy(part, f.file.Content); err != nil {
			return nil, fmt.Errorf("copy file %s: %w", f.field, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	hReq, err := c.newRequest(ctx, token, http.MethodPost, path, &buf)
	if err != nil {
		return nil, err
	}
	hReq.Header.Set("Content-Type", mw.FormDataContentType())
	data, _, err := c.send(hReq)
	if err != nil {
		return nil, err
	}
	return decodeBody[Rsp](data)
}

func (c *Client) download(ctx context.Context, token, path string) (*models.Download, error) {
	hReq, err := c.newRequest(ctx, token, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	hReq.Header.Set("Accept", "*/*")
	data, header, err := c.send(hReq)
	if err != nil {
		return nil, err
	}
	return &models.Download{
		ContentType:        header.Get("Content-Type"),
		ContentDisposition: header.Get("Content-Disposition"),
		Body:               data,
	}, nil
}
