package store

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// NewID builds a collision-resistant identifier: prefix, creation timestamp
// in epoch millis, and a random suffix. Not cryptographically unique, just
// negligible collision odds for a single-tenant data set.
func NewID(prefix string) string {
	bytes := make([]byte, 5)
	_, _ = rand.Read(bytes)
	suffix := hex.EncodeToString(bytes)
	millis := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if prefix == "" {
		return millis + "_" + suffix
	}
	return prefix + "_" + millis + "_" + suffix
}
