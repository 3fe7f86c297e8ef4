package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "test_key_secret"
	orderID := "order_Nxq7x1h2"
	paymentID := "pay_Nxq8m4k9"
	valid := sign(orderID, paymentID, secret)

	assert.True(t, VerifySignature(orderID, paymentID, valid, secret))
}

func TestVerifySignatureSingleCharMutation(t *testing.T) {
	secret := "test_key_secret"
	valid := sign("order_1", "pay_1", secret)

	for i := 0; i < len(valid); i++ {
		mutated := []byte(valid)
		if mutated[i] == 'a' {
			mutated[i] = 'b'
		} else {
			mutated[i] = 'a'
		}
		assert.False(t, VerifySignature("order_1", "pay_1", string(mutated), secret),
			"mutation at index %d must invalidate the signature", i)
	}
}

func TestVerifySignatureRejectsWrongInputs(t *testing.T) {
	secret := "test_key_secret"
	valid := sign("order_1", "pay_1", secret)

	assert.False(t, VerifySignature("order_2", "pay_1", valid, secret))
	assert.False(t, VerifySignature("order_1", "pay_2", valid, secret))
	assert.False(t, VerifySignature("order_1", "pay_1", valid, "other_secret"))
	assert.False(t, VerifySignature("order_1", "pay_1", "", secret))
}

func TestVerifySignatureDeterministic(t *testing.T) {
	secret := "s"
	sig := sign("o", "p", secret)
	for i := 0; i < 10; i++ {
		assert.True(t, VerifySignature("o", "p", sig, secret))
	}
}
