package rules

import (
	"testing"
	"time"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCELEngine(t *testing.T) {
	engine, err := NewCELEngine()
	require.NoError(t, err)

	facts := models.Facts{
		Amount: decimal.NewFromInt(750000),
		At:     time.Date(2025, 3, 8, 19, 30, 0, 0, time.UTC), // Saturday
		Purchase: models.PurchaseContext{
			Brand:      "Rolex",
			Items:      `["watch","strap"]`,
			MemberTier: "GOLD",
		},
	}

	tests := []struct {
		name    string
		expr    string
		want    bool
		wantErr bool
	}{
		{name: "empty passes", expr: "", want: true},
		{name: "amount", expr: "amount >= 500000.0", want: true},
		{name: "brand and item", expr: `brand == "Rolex" && "strap" in items`, want: true},
		{name: "weekday", expr: `weekday == "SATURDAY" && hour >= 18`, want: true},
		{name: "tier mismatch", expr: `memberTier == "VIP"`, want: false},
		{name: "not boolean", expr: "amount + 1.0", wantErr: true},
		{name: "syntax", expr: "amount >=", wantErr: true},
		{name: "unknown variable", expr: "colour == 'red'", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Evaluate(tt.expr, facts)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, ierr.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCELEngineMalformedItems(t *testing.T) {
	engine, err := NewCELEngine()
	require.NoError(t, err)

	_, err = engine.Evaluate(`size(items) > 0`, models.Facts{Purchase: models.PurchaseContext{Items: "{"}})
	assert.True(t, ierr.IsValidation(err))
}
