// Package crypto provides per-record symmetric encryption for QR tokens.
//
// Implements AES-256-CBC with PKCS#7 padding. Every record gets a fresh key
// and IV; key, IV and ciphertext are all carried as base64 text. There is no
// authentication tag: verification matches ciphertext by string equality and
// never decrypts, so only confidentiality is provided.
package crypto
