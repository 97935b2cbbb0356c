package portal

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/hex"
	"io"
	"slices"

	E "github.com/sagernet/sing/common/exceptions"
)

// PasswordEncoder encrypts secrets the way the portal's login script does:
// PKCS#1 v1.5, ciphertext bytes reversed, lowercase hex.
type PasswordEncoder struct {
	publicKey *rsa.PublicKey
	random    io.Reader
}

func NewPasswordEncoder(params *RSAPublicParams) (*PasswordEncoder, error) {
	if params == nil || params.Modulus == nil || params.Exponent == nil {
		return nil, E.New("missing RSA parameters")
	}
	if !params.Exponent.IsInt64() || params.Exponent.Int64() > 1<<31-1 {
		return nil, E.New("RSA exponent out of range: ", params.Exponent)
	}
	return &PasswordEncoder{
		publicKey: &rsa.PublicKey{
			N: params.Modulus,
			E: int(params.Exponent.Int64()),
		},
		random: rand.Reader,
	}, nil
}

// SetRandom replaces the padding source.
func (e *PasswordEncoder) SetRandom(random io.Reader) {
	e.random = random
}

func (e *PasswordEncoder) Encrypt(password string) (string, error) {
	ciphertext, err := rsa.EncryptPKCS1v15(e.random, e.publicKey, []byte(password))
	if err != nil {
		return "", E.Cause(err, "encrypt password")
	}
	slices.Reverse(ciphertext)
	return hex.EncodeToString(ciphertext), nil
}
