package zrules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tolga/wardroster/internal/duty"
	"github.com/tolga/wardroster/internal/zrules"
)

func TestIndex(t *testing.T) {
	assert.Equal(t, 0, zrules.Index(duty.D, duty.D, duty.D))
	assert.Equal(t, 63, zrules.Index(duty.X, duty.X, duty.X))
	assert.Equal(t, 42, zrules.Index(duty.N, duty.N, duty.N))
}

func TestTable_HasThirtySixEntries(t *testing.T) {
	assert.Len(t, zrules.Table, 36)
}

func TestAllowed_NNNOnlyAllowsX(t *testing.T) {
	idx := zrules.Index(duty.N, duty.N, duty.N)
	assert.True(t, zrules.Allowed(idx))
	allowed := zrules.Table[idx]
	assert.Contains(t, allowed, duty.X)
	assert.NotContains(t, allowed, duty.D)
	assert.NotContains(t, allowed, duty.E)
	assert.NotContains(t, allowed, duty.N)
}

func TestAllowed_NDNIsForbidden(t *testing.T) {
	idx := zrules.Index(duty.N, duty.D, duty.N)
	assert.Equal(t, 34, idx)
	assert.False(t, zrules.Allowed(idx))
}
