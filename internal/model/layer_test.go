package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayerUpstream(t *testing.T) {
	tests := []struct {
		layer  Layer
		want   Layer
		wantOK bool
	}{
		{LayerRaw, "", false},
		{LayerStaging, LayerRaw, true},
		{LayerMarts, LayerStaging, true},
		{Layer("metrics"), "", false},
	}
	for _, tt := range tests {
		got, ok := tt.layer.Upstream()
		assert.Equal(t, tt.wantOK, ok, "Upstream(%q)", tt.layer)
		assert.Equal(t, tt.want, got, "Upstream(%q)", tt.layer)
	}
}

func TestLayerStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusRunning.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
}

func TestSourceTypeUnionSource(t *testing.T) {
	assert.Equal(t, "bank_account", SourceBank.UnionSource())
	assert.Equal(t, "credit_card", SourceCreditCard.UnionSource())
	assert.False(t, SourceType("brokerage").Valid())
}
