// featureflag/keys.go
package featureflag

import (
	"fmt"
	"strconv"
	"strings"
)

const cacheKeyPrefix = "feature-flag"

var keyEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

// GenerateCacheKey derives feature-flag:{flag}:{userID}:{organizationId}.
// Separators inside a component are escaped. The user id is written as
// text, so a numeric id and its string form share a key, as do a nil and
// an empty id.
func GenerateCacheKey(flag string, ctx FlagContext) string {
	return strings.Join([]string{
		cacheKeyPrefix,
		keyEscaper.Replace(flag),
		keyEscaper.Replace(formatUserID(ctx.UserID)),
		strconv.Itoa(ctx.OrganizationID),
	}, ":")
}

func formatUserID(id interface{}) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}
