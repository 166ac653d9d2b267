package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/ArowuTest/retail-loyalty-backend/internal/logger"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/services"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var requiredColumns = []string{"member_id", "receipt_code", "amount", "purchased_at"}

// purchaseTimeLayouts are tried in order; values without a zone are read in
// the store timezone.
var purchaseTimeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02"}

// ImportSummary counts what happened to each data row
type ImportSummary struct {
	TotalRows       int
	Recorded        int
	VouchersIssued  int
	AlreadyRecorded int
	Errors          []string
}

type purchaseImporter struct {
	transactions services.TransactionService
	logger       *logger.Logger
	location     *time.Location
	adminID      string
}

// Import reads a CSV with a header row. A bad row is reported and skipped; a
// store failure stops the import.
func (p *purchaseImporter) Import(ctx context.Context, r io.Reader) (ImportSummary, error) {
	var summary ImportSummary

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return summary, fmt.Errorf("CSV file is empty")
	}
	if err != nil {
		return summary, fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	missing := lo.Filter(requiredColumns, func(c string, _ int) bool {
		_, ok := columns[c]
		return !ok
	})
	if len(missing) > 0 {
		return summary, fmt.Errorf("CSV header is missing columns: %s", strings.Join(missing, ", "))
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return summary, fmt.Errorf("failed to parse CSV line %d: %w", line, err)
		}
		summary.TotalRows++

		req, err := p.parseRow(columns, record)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		result, err := p.transactions.RecordTransaction(ctx, req)
		switch {
		case err == nil:
			summary.Recorded++
			summary.VouchersIssued += len(result.Vouchers)
		case ierr.IsConflict(err):
			summary.AlreadyRecorded++
		case ierr.IsValidation(err), ierr.IsNotFound(err):
			summary.Errors = append(summary.Errors, fmt.Sprintf("line %d: %s", line, ierr.Hint(err, err.Error())))
		default:
			return summary, fmt.Errorf("line %d: %w", line, err)
		}
	}

	if len(summary.Errors) > 0 {
		p.logger.Warnw("some rows were skipped", "count", len(summary.Errors), "errors", summary.Errors)
	}
	return summary, nil
}

func (p *purchaseImporter) parseRow(columns map[string]int, record []string) (*models.RecordTransactionRequest, error) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	amount, err := decimal.NewFromString(field("amount"))
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", field("amount"))
	}
	purchasedAt, err := p.parseTime(field("purchased_at"))
	if err != nil {
		return nil, err
	}

	req := &models.RecordTransactionRequest{
		MemberID:       field("member_id"),
		ReceiptCode:    field("receipt_code"),
		Amount:         amount,
		PurchasedAt:    &purchasedAt,
		Brand:          field("brand"),
		CollectionName: field("collection_name"),
		Items:          field("items"),
		Note:           "imported from CSV",
		AdminID:        p.adminID,
	}
	if year := field("collection_year"); year != "" {
		y, err := strconv.Atoi(year)
		if err != nil {
			return nil, fmt.Errorf("invalid collection year %q", year)
		}
		req.CollectionYear = &y
	}
	return req, nil
}

func (p *purchaseImporter) parseTime(value string) (time.Time, error) {
	loc := p.location
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range purchaseTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid purchase time %q", value)
}
