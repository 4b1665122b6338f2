package domain

import (
	"context"
	"time"
)

// Record is the persisted unit behind every issued QR code. The id and the
// ciphertext are both unique lookup keys for the lifetime of the store.
type Record struct {
	ID         string
	PlainToken string
	CipherText string

	// EncryptionKey and IV are write-once at creation. They are required to
	// ever decrypt CipherText, but verification compares ciphertext strings
	// and never decrypts.
	EncryptionKey string
	IV            string

	CreatedAt time.Time

	// Profile is nil for anonymous codes. A record carries either a full
	// profile or none; partial population is unrepresentable here.
	Profile *Profile
}

// Profile holds the personal data optionally bound to a record.
type Profile struct {
	FirstName     string
	LastName      string
	NationalID    string
	BirthDate     time.Time
	PhotoURL      string
	Role          string
	Department    string
	VolunteerArea string
}

// RecordRepository persists records keyed by id and by ciphertext.
// Save surfaces ErrDuplicateRecord on a unique-key rejection; callers never
// retry, the collision probability is cryptographically negligible.
type RecordRepository interface {
	Save(ctx context.Context, record *Record) error
	FindByID(ctx context.Context, id string) (*Record, error)
	FindByCipherText(ctx context.Context, cipherText string) (*Record, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// RecordCache is an optional read-through cache in front of the repository.
// Records are immutable after creation, so cached entries never go stale.
type RecordCache interface {
	Get(ctx context.Context, key string) (*Record, bool)
	Put(ctx context.Context, key string, record *Record)
}

// ImageCodec renders text into a scannable QR image and decodes an image
// back into the text it encodes.
type ImageCodec interface {
	Render(text string) ([]byte, error)
	Decode(image []byte) (string, error)
}

// FileStorage stores raw file bytes and returns a public locator URL.
type FileStorage interface {
	Store(ctx context.Context, data []byte, name string) (string, error)
}
