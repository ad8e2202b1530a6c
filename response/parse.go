// response/parse.go
package response

import (
	"encoding/json"
	"fmt"
)

// ParseSuccessResponse unmarshals a successful response body into out. A nil
// out or an empty body is a no-op so that callers can ignore 204-style
// responses without special casing.
func ParseSuccessResponse(body []byte, out interface{}) error {
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response body: %w", err)
	}
	return nil
}
