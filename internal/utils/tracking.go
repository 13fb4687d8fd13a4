package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateTrackingCode returns a customer-facing order reference of the form
// TRK<millis><4 random digits>. The timestamp keeps codes roughly sortable,
// the random suffix separates orders placed within the same millisecond.
func GenerateTrackingCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return fmt.Sprintf("TRK%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("TRK%d%04d", time.Now().UnixMilli(), n.Int64())
}
