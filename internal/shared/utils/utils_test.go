package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasherAlgorithms(t *testing.T) {
	sha := NewHasher(SHA256)
	blake := NewHasher(BLAKE2b)

	assert.Len(t, sha.HashString("foo"), 64)
	assert.Len(t, blake.HashString("foo"), 64)
	assert.NotEqual(t, sha.HashString("foo"), blake.HashString("foo"))
	assert.Equal(t, sha.HashString("foo"), sha.HashString("foo"))
}

func TestHashFieldsOrderIndependent(t *testing.T) {
	h := DefaultHasher()
	assert.Equal(t, h.HashFields("a", "b", "c"), h.HashFields("c", "a", "b"))
}

func TestParseHashAlgorithm(t *testing.T) {
	algo, err := ParseHashAlgorithm("BLAKE2B")
	require.NoError(t, err)
	assert.Equal(t, BLAKE2b, algo)

	algo, err = ParseHashAlgorithm("")
	require.NoError(t, err)
	assert.Equal(t, SHA256, algo)

	_, err = ParseHashAlgorithm("md5")
	assert.Error(t, err)
}

func TestAppIdentifier(t *testing.T) {
	ai := NewAppIdentifier(nil)

	h1 := ai.GenerateHash("alice", "foo")
	assert.Equal(t, h1, ai.GenerateHash("alice", "foo"))
	assert.NotEqual(t, h1, ai.GenerateHash("bob", "foo"))
	assert.NotEqual(t, h1, ai.GenerateHash("alice", "bar"))
	assert.True(t, ai.VerifyHash(h1, "alice", "foo"))
	assert.Len(t, ai.GenerateShortHash(h1), 16)
}

func TestValidateAbsolutePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"absolute", "/bin/foo", false},
		{"empty", "", true},
		{"relative", "bin/foo", true},
		{"null byte", "/bin/fo\x00o", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAbsolutePath(tt.path, "absolute_path")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("Foo", "name"))
	assert.Error(t, ValidateName("", "name"))
	assert.Error(t, ValidateName("   ", "name"))
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID("app-0123abcd", "id", true))
	assert.Error(t, ValidateID("", "id", true))
	assert.Error(t, ValidateID("../etc", "id", true))
}

func TestBinaryName(t *testing.T) {
	assert.Equal(t, "foo", BinaryName("/bin/foo"))
	assert.Equal(t, "Foo", BinaryName("/opt/apps/Foo.exe"))
	assert.Equal(t, ".hidden", BinaryName("/home/u/.hidden"))
}
