package mongodb

import (
	"errors"
	"testing"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestTranslate(t *testing.T) {
	transient := mongo.CommandError{Code: 112, Name: "WriteConflict", Labels: []string{transientTxnLabel}}

	testCases := []struct {
		name    string
		err     error
		checkFn func(error) bool
	}{
		{name: "no_documents", err: mongo.ErrNoDocuments, checkFn: ierr.IsNotFound},
		{
			name:    "duplicate_key",
			err:     mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}},
			checkFn: ierr.IsConflict,
		},
		{name: "other", err: errors.New("connection reset"), checkFn: ierr.IsDatabase},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := translate(tc.err, "Voucher", "VCH-20250115-AAAAA")
			require.Error(t, err)
			assert.True(t, tc.checkFn(err), "unexpected kind: %v", err)
		})
	}

	t.Run("transient_passes_through", func(t *testing.T) {
		err := translate(transient, "Prize", "prz_1")
		assert.Equal(t, error(transient), err)
		assert.False(t, ierr.IsKnown(err))
	})

	assert.NoError(t, translate(nil, "Prize", "prz_1"))
}

func TestFindOptionsPaging(t *testing.T) {
	sort := bson.D{{Key: "createdAt", Value: -1}}

	opts := findOptions(3, 20, sort)
	require.NotNil(t, opts.Skip)
	require.NotNil(t, opts.Limit)
	assert.Equal(t, int64(40), *opts.Skip)
	assert.Equal(t, int64(20), *opts.Limit)
	assert.Equal(t, sort, opts.Sort)

	opts = findOptions(0, 10, sort)
	assert.Equal(t, int64(0), *opts.Skip)

	opts = findOptions(2, 0, sort)
	assert.Nil(t, opts.Skip)
	assert.Nil(t, opts.Limit)
}
