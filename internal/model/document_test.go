package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument_ContentAddressed(t *testing.T) {
	docA := NewDocument("policy.pdf", []byte("same bytes"))
	docB := NewDocument("renamed.pdf", []byte("same bytes"))

	require.NotEmpty(t, docA.DocID)
	assert.Equal(t, docA.DocID, docB.DocID, "identical bytes under different filenames must share a DocID")
	assert.Equal(t, "policy.pdf", docA.FileName)
	assert.Equal(t, "renamed.pdf", docB.FileName)
}

func TestNewDocument_DifferentBytesDifferentID(t *testing.T) {
	docA := NewDocument("a.pdf", []byte("version one"))
	docB := NewDocument("a.pdf", []byte("version two"))

	assert.NotEqual(t, docA.DocID, docB.DocID)
}

func TestNewDocument_DeterministicHash(t *testing.T) {
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	got := NewDocument("a.pdf", []byte("abc")).DocID

	require.Len(t, got, 64, "DocID must be a hex-encoded sha256 sum")
	assert.Equal(t, want, got, "DocID must be the sha256 hex digest of the bytes, independent of filename")
}
