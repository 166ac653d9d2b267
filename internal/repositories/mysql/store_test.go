package mysql

import (
	"errors"
	"testing"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	testCases := []struct {
		name    string
		err     error
		checkFn func(error) bool
		hint    string
	}{
		{name: "record_not_found", err: gorm.ErrRecordNotFound, checkFn: ierr.IsNotFound, hint: "Voucher not found"},
		{
			name:    "duplicate_entry",
			err:     &mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry 'VCH-20250115-AAAAA' for key 'code'"},
			checkFn: ierr.IsConflict,
			hint:    "Voucher already exists",
		},
		{
			name:    "deadlock",
			err:     &mysqldriver.MySQLError{Number: 1213, Message: "Deadlock found"},
			checkFn: ierr.IsConflict,
			hint:    "The record is busy, please retry",
		},
		{name: "other", err: errors.New("bad connection"), checkFn: ierr.IsDatabase},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := translate(tc.err, "Voucher", "VCH-20250115-AAAAA")
			assert.True(t, tc.checkFn(err), "unexpected kind: %v", err)
			if tc.hint != "" {
				assert.Equal(t, tc.hint, ierr.Hint(err, ""))
			}
		})
	}
	assert.NoError(t, translate(nil, "Voucher", ""))
}

func TestRuleRecordKeepsKindFields(t *testing.T) {
	divisor := decimal.NewFromInt(500_000)
	minItems := 2
	rule := &models.Rule{
		ID:            "rul_1",
		Kind:          models.RuleKindBundling,
		MinimumValue:  decimal.NewFromInt(100_000),
		Divisor:       &divisor,
		RequiredItems: []string{"shirt", "belt"},
		MinItems:      &minItems,
		Condition:     `brand == "ACME"`,
	}

	back := toRuleRecord(rule).toDomain()
	assert.Equal(t, rule, back)
}
