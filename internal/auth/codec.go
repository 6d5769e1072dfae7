package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	// ErrTokenExpired means the token was well-formed and correctly signed
	// but its validity window has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrSignatureInvalid means the token could not be verified against
	// the server key, or names a signing method the server does not use.
	ErrSignatureInvalid = errors.New("token signature invalid")

	// ErrClaimsInvalid means the token verified but its claims are not
	// acceptable: wrong audience or issuer, malformed subject, or a
	// missing required claim.
	ErrClaimsInvalid = errors.New("token claims invalid")
)

// Codec signs and verifies tokens with a single symmetric key. Verification
// pins the audience and issuer configured at construction.
type Codec struct {
	secret   []byte
	method   jwt.SigningMethod
	issuer   string
	audience string
}

func NewCodec(secret, algorithm, issuer, audience string) (*Codec, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing algorithm %q is not an HMAC method", algorithm)
	}
	return &Codec{
		secret:   []byte(secret),
		method:   method,
		issuer:   issuer,
		audience: audience,
	}, nil
}

// Encode signs the claim set into a compact token string.
func (cd *Codec) Encode(claims *TokenClaims) (string, error) {
	token := jwt.NewWithClaims(cd.method, claims)
	signed, err := token.SignedString(cd.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the token and returns its claims. Expiry is reported as
// ErrTokenExpired even when other claims would also fail, so callers can
// distinguish a stale session from a bad one.
func (cd *Codec) Decode(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, cd.keyFunc,
		jwt.WithValidMethods([]string{cd.method.Alg()}))
	if err != nil {
		return nil, classifyParseError(err)
	}

	if !claims.VerifyAudience(cd.audience, true) {
		return nil, fmt.Errorf("%w: audience mismatch", ErrClaimsInvalid)
	}
	if !claims.VerifyIssuer(cd.issuer, true) {
		return nil, fmt.Errorf("%w: issuer mismatch", ErrClaimsInvalid)
	}
	if err := claims.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClaimsInvalid, err)
	}

	return claims, nil
}

func (cd *Codec) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return cd.secret, nil
}

// classifyParseError maps jwt parse failures onto the codec's error kinds.
// The parser accumulates validation bits, so a forged token that is also
// past its window carries both; the signature bit wins because expiry is
// only meaningful for tokens this server actually signed.
func classifyParseError(err error) error {
	var ve *jwt.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
	switch {
	case ve.Errors&(jwt.ValidationErrorSignatureInvalid|jwt.ValidationErrorUnverifiable|jwt.ValidationErrorMalformed) != 0:
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	case ve.Errors&jwt.ValidationErrorExpired != 0:
		return ErrTokenExpired
	default:
		return fmt.Errorf("%w: %v", ErrClaimsInvalid, err)
	}
}

// EncodeResetToken issues a stateless password-reset token. It carries
// only the registered claims; the email travels in the subject.
func (cd *Codec) EncodeResetToken(email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		NotBefore: jwt.NewNumericDate(now.Add(-time.Second)),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(cd.method, claims)
	signed, err := token.SignedString(cd.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign reset token: %w", err)
	}
	return signed, nil
}

// DecodeResetToken verifies a password-reset token and returns the email
// it was issued for. Reset tokens are not pinned to audience or issuer.
func (cd *Codec) DecodeResetToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, cd.keyFunc,
		jwt.WithValidMethods([]string{cd.method.Alg()}))
	if err != nil {
		return "", classifyParseError(err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: reset token has no subject", ErrClaimsInvalid)
	}
	return claims.Subject, nil
}
