package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/glimmer-social/backend/internal/common/constants"
)

// GenerateOTP returns a numeric one-time code of constants.OTPLength digits.
func GenerateOTP() (string, error) {
	otp := ""
	for i := 0; i < constants.OTPLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate otp digit: %w", err)
		}
		otp += n.String()
	}
	return otp, nil
}

// GenerateResetToken returns a random hex token for password-reset links.
func GenerateResetToken() (string, error) {
	b := make([]byte, constants.ResetTokenSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
