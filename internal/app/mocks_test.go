package app

import (
	"context"

	"github.com/qrgetsemani-cmyk/QrGetsemani/internal/crypto"
	"github.com/qrgetsemani-cmyk/QrGetsemani/internal/domain"
)

type mockRepository struct {
	SaveFunc             func(ctx context.Context, record *domain.Record) error
	FindByIDFunc         func(ctx context.Context, id string) (*domain.Record, error)
	FindByCipherTextFunc func(ctx context.Context, cipherText string) (*domain.Record, error)
	DeleteFunc           func(ctx context.Context, id string) error
	CountFunc            func(ctx context.Context) (int64, error)
}

func (m *mockRepository) Save(ctx context.Context, record *domain.Record) error {
	return m.SaveFunc(ctx, record)
}

func (m *mockRepository) FindByID(ctx context.Context, id string) (*domain.Record, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockRepository) FindByCipherText(ctx context.Context, cipherText string) (*domain.Record, error) {
	return m.FindByCipherTextFunc(ctx, cipherText)
}

func (m *mockRepository) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

func (m *mockRepository) Count(ctx context.Context) (int64, error) {
	return m.CountFunc(ctx)
}

type mockCache struct {
	entries map[string]*domain.Record
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]*domain.Record)}
}

func (m *mockCache) Get(_ context.Context, key string) (*domain.Record, bool) {
	record, ok := m.entries[key]
	return record, ok
}

func (m *mockCache) Put(_ context.Context, key string, record *domain.Record) {
	m.entries[key] = record
}

type mockCodec struct {
	RenderFunc func(text string) ([]byte, error)
	DecodeFunc func(image []byte) (string, error)
}

func (m *mockCodec) Render(text string) ([]byte, error) {
	return m.RenderFunc(text)
}

func (m *mockCodec) Decode(image []byte) (string, error) {
	return m.DecodeFunc(image)
}

type mockStorage struct {
	StoreFunc func(ctx context.Context, data []byte, name string) (string, error)
}

func (m *mockStorage) Store(ctx context.Context, data []byte, name string) (string, error) {
	return m.StoreFunc(ctx, data, name)
}

type mockTokens struct {
	NewFunc func() (string, error)
}

func (m *mockTokens) New() (string, error) {
	return m.NewFunc()
}

type mockCipher struct {
	GenerateKeyFunc   func() ([]byte, error)
	EncryptWithIVFunc func(plaintext string, key []byte) (crypto.Encrypted, error)
}

func (m *mockCipher) GenerateKey() ([]byte, error) {
	return m.GenerateKeyFunc()
}

func (m *mockCipher) EncryptWithIV(plaintext string, key []byte) (crypto.Encrypted, error) {
	return m.EncryptWithIVFunc(plaintext, key)
}
