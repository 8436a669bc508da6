package signature

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testCost = bcrypt.MinCost

func TestEncryptSignatureRoundTrip(t *testing.T) {
	hash, err := EncryptSignature(`{"a":"1"}`, `{"x":1}`, "pk-1", testCost)
	require.NoError(t, err)

	assert.True(t, Compare(SigningPayload(`{"a":"1"}`, `{"x":1}`, "pk-1"), hash))
	assert.False(t, Compare(SigningPayload(`{"a":"2"}`, `{"x":1}`, "pk-1"), hash))
	assert.False(t, Compare("", hash))
	assert.False(t, Compare(SigningPayload(`{"a":"1"}`, `{"x":1}`, "pk-1"), ""))
	assert.False(t, Compare(SigningPayload(`{"a":"1"}`, `{"x":1}`, "pk-1"), "not-a-hash"))

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, testCost, cost)
}

func TestEncryptSignatureIsSalted(t *testing.T) {
	a, err := EncryptSignature("{}", "", "pk", testCost)
	require.NoError(t, err)
	b, err := EncryptSignature("{}", "", "pk", testCost)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, Compare(SigningPayload("{}", "", "pk"), a))
	assert.True(t, Compare(SigningPayload("{}", "", "pk"), b))
}

func TestEncryptSignatureSaltRounds(t *testing.T) {
	_, err := EncryptSignature("{}", "", "pk", 3)
	assert.Error(t, err)
	_, err = EncryptSignature("{}", "", "pk", 32)
	assert.Error(t, err)
}

func TestEncryptSignatureLongPayload(t *testing.T) {
	body := strings.Repeat("x", 500)
	hash, err := EncryptSignature("{}", body, "pk", testCost)
	require.NoError(t, err)
	assert.True(t, Compare(SigningPayload("{}", body, "pk"), hash))
}

func TestCompareOnlyCoversFirst72Bytes(t *testing.T) {
	body := strings.Repeat("x", 100)
	hash, err := EncryptSignature("{}", body, "pk", testCost)
	require.NoError(t, err)

	prefix := SigningPayload("{}", "", "pk")
	require.Less(t, len(prefix), maxPayloadBytes)

	tail := strings.Repeat("x", 99) + "y"
	assert.True(t, Compare(SigningPayload("{}", tail, "pk"), hash), "bytes past the 72nd are not authenticated")

	head := "y" + strings.Repeat("x", 99)
	assert.False(t, Compare(SigningPayload("{}", head, "pk"), hash))
}
