// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package push

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

// Signer produces the JWT attached to every outgoing notification. The token
// binds the request body with a SHA-256 digest claim; receivers verify it
// against the public key set served by JWKSHandler.
type Signer struct {
	issuer     string
	keyID      string
	privateKey jwk.Key
	publicSet  jwk.Set
}

// NewSigner creates a signer with a fresh P-256 key pair.
func NewSigner(issuer string) (*Signer, error) {
	raw, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}

	key, err := jwk.Import(raw)
	if err != nil {
		return nil, fmt.Errorf("import signing key: %w", err)
	}
	keyID := uuid.NewString()
	if err := key.Set(jwk.KeyIDKey, keyID); err != nil {
		return nil, fmt.Errorf("set key ID: %w", err)
	}
	if err := key.Set(jwk.AlgorithmKey, jwa.ES256()); err != nil {
		return nil, fmt.Errorf("set key algorithm: %w", err)
	}

	public, err := jwk.PublicKeyOf(key)
	if err != nil {
		return nil, fmt.Errorf("derive public key: %w", err)
	}
	set := jwk.NewSet()
	if err := set.AddKey(public); err != nil {
		return nil, fmt.Errorf("build key set: %w", err)
	}

	return &Signer{
		issuer:     issuer,
		keyID:      keyID,
		privateKey: key,
		publicSet:  set,
	}, nil
}

// Sign returns a compact JWT covering the given request body.
func (s *Signer) Sign(body []byte) (string, error) {
	digest := sha256.Sum256(body)

	token, err := jwt.NewBuilder().
		Issuer(s.issuer).
		IssuedAt(time.Now().UTC()).
		Claim("request_body_sha256", hex.EncodeToString(digest[:])).
		Build()
	if err != nil {
		return "", fmt.Errorf("build notification token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.ES256(), s.privateKey))
	if err != nil {
		return "", fmt.Errorf("sign notification token: %w", err)
	}
	return string(signed), nil
}

// KeySet returns the public keys receivers verify notifications with.
func (s *Signer) KeySet() jwk.Set { return s.publicSet }

// JWKSHandler serves the public key set as a JWKS document.
func (s *Signer) JWKSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.MarshalWrite(w, s.publicSet); err != nil {
			http.Error(w, "failed to encode key set", http.StatusInternalServerError)
		}
	}
}
