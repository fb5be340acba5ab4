package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"path"
	"strings"

	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"github.com/angelmondragon/shopadmin/pkg/validation"
)

// DefaultDownloadName is used when a binary response names no file.
const DefaultDownloadName = "invoice.pdf"

// DecodeJSON parses a response body into dest and checks the decoded shape against
// dest's validate tags. Any mismatch is reported as a DECODE error.
func DecodeJSON(resp *Response, dest any) error {
	if resp == nil {
		return pkgerrors.New(pkgerrors.CodeDecode, "empty response")
	}
	body := bytes.TrimSpace(resp.Body)
	if len(body) == 0 {
		return pkgerrors.New(pkgerrors.CodeDecode, "empty response body").WithStatus(resp.Status)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDecode, err, "malformed response body").WithStatus(resp.Status)
	}
	if err := validation.Struct(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDecode, err, "unexpected response shape").
			WithStatus(resp.Status).
			WithDetails(validation.Messages(err))
	}
	return nil
}

// Attachment is a binary download.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Download fetches route as raw bytes. The filename comes from the
// Content-Disposition header, falling back to DefaultDownloadName.
func (c *Client) Download(ctx context.Context, route, name string) (*Attachment, error) {
	resp, err := c.Do(ctx, Request{
		Method:  http.MethodGet,
		Path:    route,
		Headers: map[string]string{"Accept": "application/octet-stream, application/pdf"},
		Name:    name,
	})
	if err != nil {
		return nil, err
	}
	return &Attachment{
		Filename:    FilenameFromDisposition(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
		Content:     resp.Body,
	}, nil
}

// FilenameFromDisposition extracts a safe base filename from a Content-Disposition value.
func FilenameFromDisposition(header string) string {
	if strings.TrimSpace(header) == "" {
		return DefaultDownloadName
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return DefaultDownloadName
	}
	name := params["filename"]
	if name == "" {
		return DefaultDownloadName
	}
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return DefaultDownloadName
	}
	return name
}
