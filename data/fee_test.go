package data

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeeRendersTwoDecimals(t *testing.T) {
	fee, err := NewFee("0.5")
	require.NoError(t, err)
	assert.Equal(t, "0.50", fee.String())

	out, err := json.Marshal(struct {
		DailyFee Fee `json:"daily_fee"`
	}{fee})
	require.NoError(t, err)
	assert.JSONEq(t, `{"daily_fee":"0.50"}`, string(out))
}

func TestFeeAcceptsTextAndNumbers(t *testing.T) {
	var body struct {
		DailyFee Fee `json:"daily_fee"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"daily_fee":"1.25"}`), &body))
	assert.Equal(t, "1.25", body.DailyFee.String())

	require.NoError(t, json.Unmarshal([]byte(`{"daily_fee":2.5}`), &body))
	assert.Equal(t, "2.50", body.DailyFee.String())
}

func TestFeeHasCents(t *testing.T) {
	fee, _ := NewFee("1.500")
	assert.True(t, fee.HasCents())
	fee, _ = NewFee("1.505")
	assert.False(t, fee.HasCents())
}
