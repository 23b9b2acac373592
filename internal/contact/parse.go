package contact

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"
)

// ParseSubmission decodes a raw API Gateway request body into a Submission.
// Browsers post the contact form either as JSON or as multipart/form-data;
// API Gateway may additionally base64-encode the body. A body that cannot be
// decoded wraps ErrMalformedPayload; field-level problems are left to
// Validate. Unknown fields are ignored.
func ParseSubmission(body string, isBase64 bool, headers map[string]string) (*Submission, error) {
	raw := []byte(body)
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid base64 body: %v", ErrMalformedPayload, err)
		}
		raw = decoded
	}

	contentType := headerValue(headers, "Content-Type")
	if contentType == "" {
		// API Gateway test invocations omit the header; assume JSON.
		return parseJSON(raw)
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: bad content type %q: %v", ErrMalformedPayload, contentType, err)
	}

	switch {
	case strings.EqualFold(mediaType, "application/json"):
		return parseJSON(raw)
	case strings.EqualFold(mediaType, "multipart/form-data"):
		boundary, ok := params["boundary"]
		if !ok {
			return nil, fmt.Errorf("%w: multipart boundary missing", ErrMalformedPayload)
		}
		return parseMultipart(raw, boundary)
	default:
		return nil, fmt.Errorf("%w: unsupported media type %q", ErrMalformedPayload, mediaType)
	}
}

func parseJSON(raw []byte) (*Submission, error) {
	var sub Submission
	if err := json.Unmarshal(raw, &sub); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return &sub, nil
}

func parseMultipart(raw []byte, boundary string) (*Submission, error) {
	mr := multipart.NewReader(bytes.NewReader(raw), boundary)
	sub := &Submission{}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		value, err := io.ReadAll(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		switch part.FormName() {
		case "name":
			sub.Name = string(value)
		case "email":
			sub.Email = string(value)
		case "subject":
			sub.Subject = string(value)
		case "message":
			sub.Message = string(value)
		}
	}

	return sub, nil
}

// headerValue looks up a header case-insensitively. API Gateway does not
// normalize header casing across invocation paths.
func headerValue(headers map[string]string, key string) string {
	if v, ok := headers[key]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
