// httpclient/multipartrequest.go
package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// MultipartField describes one part of a multipart/form-data upload. When
// FileName is empty the part is written as a plain form field carrying Value;
// otherwise Content is streamed into a file part. A request shaped with
// multipart form data is never retried: the part readers are consumed by the
// first attempt and cannot safely be re-sent.
type MultipartField struct {
	FieldName string
	FileName  string
	Value     string
	Content   io.Reader
}

// buildMultipartBody assembles the multipart body and returns it together
// with the content type carrying the boundary.
func buildMultipartBody(fields []MultipartField) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, field := range fields {
		if field.FileName == "" {
			if err := writer.WriteField(field.FieldName, field.Value); err != nil {
				return nil, "", fmt.Errorf("failed to write form field %q: %w", field.FieldName, err)
			}
			continue
		}

		part, err := writer.CreateFormFile(field.FieldName, field.FileName)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create file part %q: %w", field.FieldName, err)
		}
		if field.Content != nil {
			if _, err := io.Copy(part, field.Content); err != nil {
				return nil, "", fmt.Errorf("failed to copy content for part %q: %w", field.FieldName, err)
			}
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}
