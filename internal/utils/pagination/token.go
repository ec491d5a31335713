package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// Cursor tokens are opaque base64 strings of the form "o:<offset>". Clients
// must treat them as opaque; the encoding may change between releases.

// EncodeToken encodes an offset into an opaque pagination token.
func EncodeToken(offset int) string {
	raw := fmt.Sprintf("o:%d", offset)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// DecodeToken decodes an opaque pagination token into an offset. A nil or
// empty token decodes to offset zero.
func DecodeToken(token *string) (int, error) {
	if token == nil || *token == "" {
		return 0, nil
	}

	raw, err := base64.StdEncoding.DecodeString(*token)
	if err != nil {
		return 0, fmt.Errorf("invalid pagination token: %w", err)
	}

	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 || parts[0] != "o" {
		return 0, fmt.Errorf("invalid pagination token format")
	}

	offset, err := strconv.Atoi(parts[1])
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("invalid pagination token offset")
	}

	return offset, nil
}

// NextToken returns the token for the next page, or nil if the current page
// was not full (meaning there are no further results).
func NextToken(offset, limit, fetched int) *string {
	if fetched < limit {
		return nil
	}
	token := EncodeToken(offset + fetched)
	return &token
}
