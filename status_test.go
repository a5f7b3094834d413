package libtle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTxStatusString(t *testing.T) {
	assert.Equal(t, "started", TxStarted.String())
	assert.Equal(t, "retry", TxRetry.String())
	assert.Equal(t, "conflict|capacity", (TxConflict | TxCapacity).String())
	assert.Equal(t, "status(0x0)", TxStatus(0).String())
}

func TestTxStatusExplicitCode(t *testing.T) {
	s := TxExplicit | explicitCodeBits(lockIsHeldAbortCode)
	code, ok := s.ExplicitCode()
	assert.True(t, ok, "ExplicitCode should report a code when TxExplicit is set")
	assert.Equal(t, lockIsHeldAbortCode, code)
	assert.Contains(t, s.String(), "(code=1)")

	_, ok = TxConflict.ExplicitCode()
	assert.False(t, ok, "ExplicitCode must not report a code without TxExplicit")
}

func TestTxStatusHas(t *testing.T) {
	s := TxRetry | TxConflict
	assert.True(t, s.Has(TxRetry), "Has should see a single set bit")
	assert.True(t, s.Has(TxRetry|TxConflict), "Has should see the full mask")
	assert.False(t, s.Has(TxRetry|TxCapacity), "Has must require every bit in the mask")
}
