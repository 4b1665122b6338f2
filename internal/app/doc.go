// Package app is the application layer — the only component that references
// multiple domain components. It orchestrates QR issuance and verification.
package app
