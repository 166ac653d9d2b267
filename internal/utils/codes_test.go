package utils

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVoucherCodeFormat(t *testing.T) {
	now := time.Date(2025, 1, 7, 23, 59, 0, 0, time.UTC)
	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		code, err := GenerateVoucherCode(now)
		require.NoError(t, err)
		assert.True(t, IsVoucherCode(code), code)
		assert.True(t, strings.HasPrefix(code, "VCH-20250107-"), code)
		seen[code] = struct{}{}
	}
	// 36^5 possibilities, a handful of repeats would still be fine
	assert.Greater(t, len(seen), 490)
}

func TestGenerateLotteryNumberFormat(t *testing.T) {
	for i := 0; i < 500; i++ {
		n, err := GenerateLotteryNumber()
		require.NoError(t, err)
		require.True(t, IsLotteryNumber(n), n)
		for _, group := range strings.Split(n, "-") {
			v, err := strconv.Atoi(group)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, v, 1000)
			assert.LessOrEqual(t, v, 9999)
		}
	}
}

func TestFormatValidators(t *testing.T) {
	tests := []struct {
		in      string
		voucher bool
		lottery bool
	}{
		{in: "VCH-20250107-AB12Z", voucher: true},
		{in: "VCH-2025017-AB12Z"},
		{in: "vch-20250107-ab12z"},
		{in: "VCH-20250107-AB12"},
		{in: "4821-0093-7710", lottery: true},
		{in: "4821-093-7710"},
		{in: "48210093-7710"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.voucher, IsVoucherCode(tt.in))
			assert.Equal(t, tt.lottery, IsLotteryNumber(tt.in))
		})
	}
}

func TestNormalizeVoucherCode(t *testing.T) {
	assert.Equal(t, "VCH-20250107-AB12Z", NormalizeVoucherCode("  vch-20250107-ab12z "))
}
