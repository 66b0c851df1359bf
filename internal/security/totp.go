package security

import (
	"strings"

	"github.com/pquerna/otp/totp"
)

// totpIssuer is the issuer shown in authenticator apps.
const totpIssuer = "LanternFest Portal"

// GenerateTOTPSecret provisions a new TOTP secret for an account email.
// It returns the secret and the otpauth provisioning URL.
func GenerateTOTPSecret(accountEmail string) (secret string, url string, err error) {
	key, errGenerate := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: strings.TrimSpace(accountEmail),
	})
	if errGenerate != nil {
		return "", "", errGenerate
	}
	return key.Secret(), key.URL(), nil
}

// ValidateTOTP reports whether a code matches the stored secret.
func ValidateTOTP(code, secret string) bool {
	code = strings.TrimSpace(code)
	secret = strings.TrimSpace(secret)
	if code == "" || secret == "" {
		return false
	}
	return totp.Validate(code, secret)
}
