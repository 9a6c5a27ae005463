// Package uuid generates the identifiers used by pennywise: time-ordered
// UUIDv7 primary keys, random correlation refs for optimistic writes, and
// temporary ids for records that only exist on the client.
package uuid

import (
	"strconv"
	"strings"
	"time"

	googleuuid "github.com/google/uuid"
)

// TempPrefix marks ids assigned by the client before the server responds.
const TempPrefix = "temp-"

// New generates a new UUIDv7 based on the current timestamp.
// UUIDv7 is time-ordered and suitable for use as database primary keys.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		// Fallback to standard UUIDv4 if random generation fails
		return googleuuid.New().String()
	}
	return id.String()
}

// NewRef returns a random UUIDv4 used to correlate an optimistic record with
// the server's response.
func NewRef() string {
	return googleuuid.New().String()
}

// TempID returns a client-side placeholder id of the form temp-<unix millis>.
func TempID(now time.Time) string {
	return TempPrefix + strconv.FormatInt(now.UnixMilli(), 10)
}

// IsTemp reports whether id was produced by TempID.
func IsTemp(id string) bool {
	return strings.HasPrefix(id, TempPrefix)
}

// Parse validates and parses a UUID string
func Parse(s string) (string, error) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// IsValid checks if a string is a valid UUID
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
