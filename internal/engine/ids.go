package engine

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const suffixLen = 9

// suffixSpace is 36^9, the number of distinct 9-char base36 suffixes.
const suffixSpace = 101559956668416

// NewID returns an identifier of the form <prefix>_<unixMillis>_<suffix>
// where suffix is 9 random base36 characters.
func NewID(prefix string, now time.Time) string {
	u := uuid.New()
	n := binary.BigEndian.Uint64(u[:8]) % suffixSpace
	s := strconv.FormatUint(n, 36)
	if len(s) < suffixLen {
		s = strings.Repeat("0", suffixLen-len(s)) + s
	}
	return fmt.Sprintf("%s_%d_%s", prefix, now.UnixMilli(), s)
}
