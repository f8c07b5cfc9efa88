package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// resetCodeRange covers the 900,000 six-digit values 100000..999999.
var resetCodeRange = big.NewInt(900000)

// GenerateResetCode returns a 6-digit password reset code drawn uniformly
// from a cryptographically secure source.
func GenerateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, resetCodeRange)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
