package main

import (
	"context"
	"strings"
	"testing"
	"time"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/ArowuTest/retail-loyalty-backend/internal/logger"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTransactions struct {
	requests []*models.RecordTransactionRequest
	seen     map[string]bool
	failWith error
}

func (r *recordingTransactions) RecordTransaction(_ context.Context, req *models.RecordTransactionRequest) (*models.TransactionResult, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	if r.seen == nil {
		r.seen = map[string]bool{}
	}
	if r.seen[req.ReceiptCode] {
		return nil, ierr.NewError("duplicate receipt").Mark(ierr.ErrConflict)
	}
	if req.MemberID == "mbr_missing" {
		return nil, ierr.NewError("member not found").WithHint("Member not found").Mark(ierr.ErrNotFound)
	}
	r.seen[req.ReceiptCode] = true
	r.requests = append(r.requests, req)
	return &models.TransactionResult{Vouchers: []*models.Voucher{{ID: "vch_" + req.ReceiptCode}}}, nil
}

func (r *recordingTransactions) GetTransaction(context.Context, string) (*models.Transaction, error) {
	return nil, nil
}

func (r *recordingTransactions) ListTransactionsByMember(context.Context, string, int, int) ([]*models.Transaction, error) {
	return nil, nil
}

func newTestImporter(t *testing.T, txns *recordingTransactions) *purchaseImporter {
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	return &purchaseImporter{transactions: txns, logger: logger.NewNop(), location: loc, adminID: "importer"}
}

func TestImportRecordsRows(t *testing.T) {
	txns := &recordingTransactions{}
	csvData := `member_id,receipt_code,amount,purchased_at,brand,collection_year
mbr_1,RCP-1,150000,2025-01-15 10:30,Acme,2025
mbr_1,RCP-1,150000,2025-01-15 10:30,Acme,2025
mbr_2,RCP-2,not-a-number,2025-01-15,,
mbr_missing,RCP-3,1000,2025-01-15,,
mbr_2,RCP-4,99000,2025-01-16T08:00:00Z,,
`
	summary, err := newTestImporter(t, txns).Import(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, 5, summary.TotalRows)
	assert.Equal(t, 2, summary.Recorded)
	assert.Equal(t, 2, summary.VouchersIssued)
	assert.Equal(t, 1, summary.AlreadyRecorded)
	require.Len(t, summary.Errors, 2)
	assert.Contains(t, summary.Errors[0], "line 4")
	assert.Contains(t, summary.Errors[1], "Member not found")

	first := txns.requests[0]
	assert.Equal(t, "Acme", first.Brand)
	require.NotNil(t, first.CollectionYear)
	assert.Equal(t, 2025, *first.CollectionYear)
	assert.Equal(t, "importer", first.AdminID)
	assert.Equal(t, "Asia/Jakarta", first.PurchasedAt.Location().String())
	assert.Equal(t, 10, first.PurchasedAt.Hour())
	assert.Equal(t, time.UTC, txns.requests[1].PurchasedAt.Location())
}

func TestImportRejectsBadHeader(t *testing.T) {
	_, err := newTestImporter(t, &recordingTransactions{}).Import(context.Background(), strings.NewReader("member_id,amount\nmbr_1,100\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "receipt_code")

	_, err = newTestImporter(t, &recordingTransactions{}).Import(context.Background(), strings.NewReader(""))
	require.Error(t, err)
}

func TestImportStopsOnStoreFailure(t *testing.T) {
	txns := &recordingTransactions{failWith: ierr.NewError("connection reset").Mark(ierr.ErrDatabase)}
	csvData := "member_id,receipt_code,amount,purchased_at\nmbr_1,RCP-1,1000,2025-01-15\n"

	summary, err := newTestImporter(t, txns).Import(context.Background(), strings.NewReader(csvData))
	require.Error(t, err)
	assert.Equal(t, 1, summary.TotalRows)
	assert.Zero(t, summary.Recorded)
}
