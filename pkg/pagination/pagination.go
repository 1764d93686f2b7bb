// Package pagination implements the AIP-158 opaque page-token codec used
// throughout the service: page tokens are base64("offset:N") for a
// non-negative integer N. See spec §4.1, §6, and invariants P1/P2.
package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/nmxmxh/desktop-automation-service/pkg/apierror"
	"google.golang.org/grpc/codes"
)

// DefaultPageSize is used when a request omits page_size or sets it <= 0.
const DefaultPageSize = 100

// SmallDefaultPageSize is the smaller default used by sessions and macros.
const SmallDefaultPageSize = 50

// Encode renders offset as an opaque page token.
func Encode(offset int) string {
	return base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("offset:%d", offset)))
}

// Decode parses a page token back into a non-negative offset. Decode treats
// "" as an invalid token, keeping the round-trip property exact; DecodeOrZero
// is the variant that maps "" to offset 0 (the first page).
func Decode(token string) (int, error) {
	if token == "" {
		return 0, invalidToken(token)
	}
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return 0, invalidToken(token)
	}
	s := string(raw)
	rest, ok := strings.CutPrefix(s, "offset:")
	if !ok {
		return 0, invalidToken(token)
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, invalidToken(token)
	}
	return n, nil
}

// DecodeOrZero treats an empty token as offset 0 (the common "first page"
// case) and otherwise delegates to Decode.
func DecodeOrZero(token string) (int, error) {
	if token == "" {
		return 0, nil
	}
	return Decode(token)
}

func invalidToken(token string) error {
	return apierror.New(codes.InvalidArgument, apierror.ReasonInvalidPageToken,
		"invalid page token", map[string]string{"value": token})
}

// ResolvePageSize applies the usual "<=0 means default" AIP-158 rule.
func ResolvePageSize(requested, def int) int {
	if requested <= 0 {
		return def
	}
	return requested
}

// Page returns the [start, start+size) slice of items (by a Len/At-style
// accessor isn't necessary here; callers pass a concrete slice via generics)
// along with the next page token, or "" if the page reaches the end.
func Page[T any](items []T, offset, size int) (page []T, nextToken string) {
	if offset >= len(items) {
		return nil, ""
	}
	end := offset + size
	if end > len(items) {
		end = len(items)
	}
	page = items[offset:end]
	if end < len(items) {
		nextToken = Encode(end)
	}
	return page, nextToken
}
