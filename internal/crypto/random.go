package crypto

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// NewOTPCode returns a random 6-digit one-time code as a string.
func NewOTPCode() (string, error) {
	// Uniform in [100000, 999999] so the code never has a leading zero.
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("rand int: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
