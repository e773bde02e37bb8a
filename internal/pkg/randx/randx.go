/*
Package randx provides generators for unique identifiers used by the relay:
UUID message and group ids, and Base62 guest user ids.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// Base62Chars is the character set used for Base62 encoding.
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the size of the Base62 character set.
	Base62Len = int64(len(Base62Chars))

	// GuestIDPrefix is the required prefix for generated guest user ids.
	GuestIDPrefix = "guest_"

	// GuestIDRawLength is the length of the random part of a guest id.
	GuestIDRawLength = 8
)

// MessageID generates a UUID v4 string to uniquely identify a routed message.
func MessageID() string {
	return uuid.New().String()
}

// GroupID generates a UUID v4 string to uniquely identify a group.
func GroupID() string {
	return uuid.New().String()
}

// GuestID generates a guest user id of the form "guest_" plus
// GuestIDRawLength cryptographically random Base62 characters.
func GuestID() (string, error) {
	result := make([]byte, GuestIDRawLength)

	for i := 0; i < GuestIDRawLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for guest id: %v", err)
		}

		result[i] = Base62Chars[num.Int64()]
	}

	return GuestIDPrefix + string(result), nil
}

// IsValidGuestID reports whether id is a well-formed guest id.
func IsValidGuestID(id string) bool {
	if !strings.HasPrefix(id, GuestIDPrefix) {
		return false
	}

	rawID := id[len(GuestIDPrefix):]

	if len(rawID) != GuestIDRawLength {
		return false
	}

	for _, char := range rawID {
		if !strings.ContainsRune(Base62Chars, char) {
			return false
		}
	}

	return true
}
