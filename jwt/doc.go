// Package jwt manages access-token issuance and verification using a
// symmetric signing secret and strict validation semantics: exact issuer
// match, zero clock-skew leeway, and a caller-supplied validation clock.
package jwt
