package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/qrgetsemani-cmyk/QrGetsemani/internal/adapter/metrics"
	"github.com/qrgetsemani-cmyk/QrGetsemani/internal/crypto"
	"github.com/qrgetsemani-cmyk/QrGetsemani/internal/domain"
	apperrors "github.com/qrgetsemani-cmyk/QrGetsemani/internal/platform/errors"
)

// TokenSource produces the unique secret behind each record.
type TokenSource interface {
	New() (string, error)
}

// Cipher provides per-record symmetric encryption.
type Cipher interface {
	GenerateKey() ([]byte, error)
	EncryptWithIV(plaintext string, key []byte) (crypto.Encrypted, error)
}

// Service orchestrates issuance and verification. Every request is an
// independent unit of work; the only shared state is the store and cache.
type Service struct {
	records domain.RecordRepository
	cache   domain.RecordCache
	files   domain.FileStorage
	codec   domain.ImageCodec
	tokens  TokenSource
	cipher  Cipher
	clock   clockwork.Clock

	baseURL     string
	payloadMode string
}

// NewService creates the application layer service.
// cache may be nil when Redis is not configured.
func NewService(records domain.RecordRepository, cache domain.RecordCache, files domain.FileStorage,
	codec domain.ImageCodec, tokens TokenSource, cipher Cipher, clock clockwork.Clock,
	baseURL, payloadMode string) *Service {
	return &Service{
		records:     records,
		cache:       cache,
		files:       files,
		codec:       codec,
		tokens:      tokens,
		cipher:      cipher,
		clock:       clock,
		baseURL:     strings.TrimRight(baseURL, "/"),
		payloadMode: payloadMode,
	}
}

// ProfileInput is the personal data submitted with generate-with-data.
type ProfileInput struct {
	FirstName     string
	LastName      string
	NationalID    string
	BirthDate     time.Time
	Role          string
	Department    string
	VolunteerArea string
}

// GenerateResult is the outcome of issuing a new QR record.
type GenerateResult struct {
	Record   *domain.Record
	QRURL    string // the URL embedded inside the QR image
	ImageURL string // public locator of the rendered PNG
}

// Generate issues an anonymous QR record: fresh token, fresh key and IV,
// persisted record, rendered and stored image.
func (s *Service) Generate(ctx context.Context) (*GenerateResult, error) {
	record, err := s.newRecord()
	if err != nil {
		return nil, err
	}

	if err := s.saveRecord(ctx, record); err != nil {
		return nil, err
	}

	result, err := s.issueImage(ctx, record)
	if err != nil {
		return nil, err
	}

	metrics.RecordsGenerated.WithLabelValues("false").Inc()
	return result, nil
}

// GenerateWithProfile issues a QR record bound to personal data. The national
// id is mandatory; the photo is stored first so its URL can be persisted
// atomically with the rest of the profile.
func (s *Service) GenerateWithProfile(ctx context.Context, input ProfileInput, photo []byte) (*GenerateResult, error) {
	if strings.TrimSpace(input.NationalID) == "" {
		return nil, apperrors.ValidationError("national id is required")
	}
	if len(photo) == 0 {
		return nil, apperrors.ValidationError("photo is required")
	}

	record, err := s.newRecord()
	if err != nil {
		return nil, err
	}

	photoURL, err := s.files.Store(ctx, photo, "photo_"+record.ID)
	if err != nil {
		return nil, apperrors.ExternalError("failed to store photo", err)
	}

	record.Profile = &domain.Profile{
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		NationalID:    input.NationalID,
		BirthDate:     input.BirthDate,
		PhotoURL:      photoURL,
		Role:          input.Role,
		Department:    input.Department,
		VolunteerArea: input.VolunteerArea,
	}

	if err := s.saveRecord(ctx, record); err != nil {
		return nil, err
	}

	result, err := s.issueImage(ctx, record)
	if err != nil {
		return nil, err
	}

	metrics.RecordsGenerated.WithLabelValues("true").Inc()
	return result, nil
}

func (s *Service) newRecord() (*domain.Record, error) {
	token, err := s.tokens.New()
	if err != nil {
		return nil, apperrors.InternalError("failed to generate token", err)
	}

	key, err := s.cipher.GenerateKey()
	if err != nil {
		return nil, apperrors.InternalError("failed to generate encryption key", err)
	}

	enc, err := s.cipher.EncryptWithIV(token, key)
	if err != nil {
		return nil, apperrors.InternalError("failed to encrypt token", err)
	}

	return &domain.Record{
		ID:            uuid.NewString(),
		PlainToken:    token,
		CipherText:    enc.CipherText,
		EncryptionKey: crypto.KeyToString(key),
		IV:            enc.IV,
		CreatedAt:     s.clock.Now().UTC(),
	}, nil
}

func (s *Service) saveRecord(ctx context.Context, record *domain.Record) error {
	err := s.records.Save(ctx, record)
	if errors.Is(err, domain.ErrDuplicateRecord) {
		// Practically impossible given the random key space; surfaced, never retried.
		return apperrors.ConflictError("generated record collided with an existing one", err).
			WithField("record_id", record.ID)
	}
	if err != nil {
		return apperrors.InternalError("failed to persist record", err)
	}
	return nil
}

// issueImage renders the payload URL and stores the PNG. If either step
// fails after the record was persisted, the record is deleted so no code
// exists without a printable image.
func (s *Service) issueImage(ctx context.Context, record *domain.Record) (*GenerateResult, error) {
	qrURL := s.buildPayloadURL(record)

	png, err := s.codec.Render(qrURL)
	if err != nil {
		s.compensate(ctx, record.ID)
		return nil, apperrors.InternalError("failed to render QR image", err).WithField("record_id", record.ID)
	}

	imageURL, err := s.files.Store(ctx, png, "qr_"+record.ID)
	if err != nil {
		s.compensate(ctx, record.ID)
		return nil, apperrors.ExternalError("failed to store QR image", err).WithField("record_id", record.ID)
	}

	return &GenerateResult{Record: record, QRURL: qrURL, ImageURL: imageURL}, nil
}

func (s *Service) compensate(ctx context.Context, recordID string) {
	if err := s.records.Delete(ctx, recordID); err != nil {
		slog.Error("Failed to delete record after image failure", "record_id", recordID, "error", err)
	}
}

// Verification is the outcome of resolving a presented credential.
type Verification struct {
	Exists          bool
	HasPersonalData bool
	Record          *domain.Record
	Profile         *ProfileView
}

// ProfileView carries profile fields sanitized for display.
type ProfileView struct {
	FirstName     string
	LastName      string
	NationalID    string
	BirthDate     string
	PhotoURL      string
	Role          string
	Department    string
	VolunteerArea string
}

// Verify resolves a record by id or ciphertext. Id takes precedence: it is a
// direct-index lookup, and the ciphertext is only consulted when the id is
// absent or misses. An unknown credential is a normal outcome, not an error.
func (s *Service) Verify(ctx context.Context, id, cipherText string) (*Verification, error) {
	record, err := s.resolve(ctx, id, cipherText)
	if errors.Is(err, domain.ErrRecordNotFound) {
		metrics.Verifications.WithLabelValues("not_found").Inc()
		return &Verification{}, nil
	}
	if err != nil {
		return nil, apperrors.InternalError("failed to look up record", err)
	}

	metrics.Verifications.WithLabelValues("found").Inc()
	return newVerification(record), nil
}

// VerifyImage decodes a scanned image and resolves whatever it encodes.
// Returns the decoded text alongside the verification so callers can echo it.
func (s *Service) VerifyImage(ctx context.Context, image []byte) (*Verification, string, error) {
	text, err := s.ReadImage(image)
	if err != nil {
		return nil, "", err
	}

	id, cipherText := parsePayload(text)
	verification, err := s.Verify(ctx, id, cipherText)
	if err != nil {
		return nil, text, err
	}
	return verification, text, nil
}

// ReadImage extracts the embedded text from a scanned QR image.
func (s *Service) ReadImage(image []byte) (string, error) {
	if len(image) == 0 {
		return "", apperrors.ValidationError("image file is empty or missing")
	}

	text, err := s.codec.Decode(image)
	if err != nil {
		metrics.ImageDecodeFailures.Inc()
		return "", apperrors.DecodeError("no QR code found in image", err)
	}
	return text, nil
}

// Count reports the total number of issued records.
func (s *Service) Count(ctx context.Context) (int64, error) {
	count, err := s.records.Count(ctx)
	if err != nil {
		return 0, apperrors.InternalError("failed to count records", err)
	}
	return count, nil
}

func (s *Service) resolve(ctx context.Context, id, cipherText string) (*domain.Record, error) {
	id = strings.TrimSpace(id)
	cipherText = strings.TrimSpace(cipherText)

	if id != "" {
		record, err := s.lookup(ctx, "id:"+id, func() (*domain.Record, error) {
			return s.records.FindByID(ctx, id)
		})
		if err == nil {
			return record, nil
		}
		if !errors.Is(err, domain.ErrRecordNotFound) {
			return nil, err
		}
		// fall through to the ciphertext, if one was supplied
	}

	if cipherText != "" {
		return s.lookup(ctx, "ct:"+cipherText, func() (*domain.Record, error) {
			return s.records.FindByCipherText(ctx, cipherText)
		})
	}

	return nil, domain.ErrRecordNotFound
}

func (s *Service) lookup(ctx context.Context, cacheKey string, fetch func() (*domain.Record, error)) (*domain.Record, error) {
	if s.cache != nil {
		if record, ok := s.cache.Get(ctx, cacheKey); ok {
			return record, nil
		}
	}

	record, err := fetch()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Put(ctx, cacheKey, record)
	}
	return record, nil
}

func newVerification(record *domain.Record) *Verification {
	v := &Verification{
		Exists: true,
		Record: record,
	}

	if p := record.Profile; p != nil {
		v.HasPersonalData = true
		v.Profile = &ProfileView{
			FirstName:     sanitize(p.FirstName),
			LastName:      sanitize(p.LastName),
			NationalID:    sanitize(p.NationalID),
			BirthDate:     p.BirthDate.Format("2006-01-02"),
			PhotoURL:      sanitize(p.PhotoURL),
			Role:          sanitize(p.Role),
			Department:    sanitize(p.Department),
			VolunteerArea: sanitize(p.VolunteerArea),
		}
	}

	return v
}

// sanitize neutralizes angle brackets before profile values reach any
// rendering collaborator.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "<", "&lt;")
	return strings.ReplaceAll(s, ">", "&gt;")
}
