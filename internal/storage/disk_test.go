package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		allowed     []string
		expected    bool
	}{
		{name: "jpeg is an image", contentType: "image/jpeg", allowed: AllowedImageTypes, expected: true},
		{name: "pdf is not an image", contentType: "application/pdf", allowed: AllowedImageTypes, expected: false},
		{name: "pdf is a document", contentType: "application/pdf", allowed: AllowedDocumentTypes, expected: true},
		{name: "gif is not a document", contentType: "image/gif", allowed: AllowedDocumentTypes, expected: false},
		{name: "empty type rejected", contentType: "", allowed: AllowedImageTypes, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidType(tt.contentType, tt.allowed))
		})
	}
}

func TestValidSize(t *testing.T) {
	assert.True(t, ValidSize(1))
	assert.True(t, ValidSize(MaxFileSizeBytes))
	assert.False(t, ValidSize(MaxFileSizeBytes+1))
	assert.False(t, ValidSize(0))
	assert.False(t, ValidSize(-1))
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("invoice", "pkg-1", "facture finale.pdf")

	assert.True(t, strings.HasPrefix(key, "invoices/pkg-1/"))
	assert.True(t, strings.HasSuffix(key, "_facture_finale.pdf"))
}

func TestObjectKey_StripsDirectories(t *testing.T) {
	key := ObjectKey("package-photo", "pkg-1", "../../etc/passwd")

	assert.True(t, strings.HasPrefix(key, "package-photos/pkg-1/"))
	assert.NotContains(t, key, "..")
}

func TestStore_SaveOpenDelete(t *testing.T) {
	store, err := NewStore(t.TempDir())
	assert.NoError(t, err)

	content := "proof of delivery"
	written, err := store.Save("delivery-proofs/pkg-1/1_proof.pdf", strings.NewReader(content))
	assert.NoError(t, err)
	assert.Equal(t, int64(len(content)), written)

	reader, err := store.Open("delivery-proofs/pkg-1/1_proof.pdf")
	assert.NoError(t, err)
	data, err := io.ReadAll(reader)
	assert.NoError(t, err)
	assert.NoError(t, reader.Close())
	assert.Equal(t, content, string(data))

	assert.NoError(t, store.Delete("delivery-proofs/pkg-1/1_proof.pdf"))
	_, err = store.Open("delivery-proofs/pkg-1/1_proof.pdf")
	assert.Error(t, err)

	// A second delete of the same key is a no-op.
	assert.NoError(t, store.Delete("delivery-proofs/pkg-1/1_proof.pdf"))
}

func TestStore_RejectsTraversal(t *testing.T) {
	store, err := NewStore(t.TempDir())
	assert.NoError(t, err)

	_, err = store.Save("../outside.txt", strings.NewReader("x"))
	assert.Error(t, err)

	_, err = store.Open("/etc/passwd")
	assert.Error(t, err)
}
