// Package importer turns uploaded spreadsheets into customers and restricted
// parties.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"rpscreen/internal/importer/metrics"
	"rpscreen/internal/records/models"
	dErrors "rpscreen/pkg/domain-errors"
	pstrings "rpscreen/pkg/platform/strings"
	"rpscreen/pkg/requestcontext"
)

// NameColumn is the only column a sheet must have.
const NameColumn = "Name"

const (
	failureSampleSize = 5
	warningSampleSize = 3
)

// Records creates the imported entries.
type Records interface {
	CreateCustomer(ctx context.Context, in models.NewCustomerInput) (*models.Customer, error)
	CreateRestrictedParty(ctx context.Context, in models.NewRestrictedPartyInput) (*models.RestrictedParty, error)
}

// Result reports an import that created at least one record.
// Errors holds every row error; Warning summarizes a sample of them.
type Result struct {
	Imported int
	Errors   []string
	Warning  string
}

type Importer struct {
	records Records
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Importer)

func WithLogger(logger *slog.Logger) Option {
	return func(i *Importer) {
		i.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(i *Importer) {
		i.metrics = m
	}
}

func New(records Records, opts ...Option) *Importer {
	i := &Importer{
		records: records,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// ImportCustomers creates a customer for every row with a Name. Address,
// Phone, Email and Comments are optional.
func (i *Importer) ImportCustomers(ctx context.Context, t Table) (*Result, error) {
	return i.run(ctx, t, "customers", []string{"Address", "Phone", "Email", "Comments"}, func(ctx context.Context, r row) error {
		_, err := i.records.CreateCustomer(ctx, models.NewCustomerInput{
			Name:     r.get(NameColumn),
			Address:  r.get("Address"),
			Phone:    r.get("Phone"),
			Email:    r.get("Email"),
			Comments: r.get("Comments"),
		})
		return err
	})
}

// ImportRestrictedParties creates a restricted party for every row with a
// Name. Reason, Source and Comments are optional.
func (i *Importer) ImportRestrictedParties(ctx context.Context, t Table) (*Result, error) {
	return i.run(ctx, t, "restricted parties", []string{"Reason", "Source", "Comments"}, func(ctx context.Context, r row) error {
		_, err := i.records.CreateRestrictedParty(ctx, models.NewRestrictedPartyInput{
			Name:     r.get(NameColumn),
			Reason:   r.get("Reason"),
			Source:   r.get("Source"),
			Comments: r.get("Comments"),
		})
		return err
	})
}

func (i *Importer) run(ctx context.Context, t Table, plural string, optional []string, create func(context.Context, row) error) (*Result, error) {
	if t.column(NameColumn) < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf(
			"Missing required columns: %s. Available columns: %s",
			NameColumn, strings.Join(pstrings.DedupeAndTrim(t.Header), ", "),
		))
	}

	columns := map[string]int{NameColumn: t.column(NameColumn)}
	for _, c := range optional {
		if idx := t.column(c); idx >= 0 {
			columns[c] = idx
		}
	}

	res := &Result{}
	for n, cells := range t.Rows {
		// Spreadsheet rows are 1-based and row 1 is the header.
		sheetRow := n + 2
		r := row{cells: cells, columns: columns}
		if r.get(NameColumn) == "" {
			res.Errors = append(res.Errors, fmt.Sprintf("Row %d: Name is empty", sheetRow))
			continue
		}
		if err := create(ctx, r); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Row %d: %s", sheetRow, rowError(err)))
			continue
		}
		res.Imported++
	}

	if i.metrics != nil {
		i.metrics.ObserveImport(plural, res.Imported, len(res.Errors))
	}
	i.logger.InfoContext(ctx, "spreadsheet imported",
		"request_id", requestcontext.RequestID(ctx),
		"kind", plural,
		"rows", len(t.Rows),
		"imported", res.Imported,
		"row_errors", len(res.Errors),
	)

	switch {
	case res.Imported == 0 && len(res.Errors) > 0:
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf(
			"No %s imported. Errors: %s", plural, strings.Join(sample(res.Errors, failureSampleSize), "; "),
		))
	case res.Imported == 0:
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf(
			"No %s were imported. Please check your Excel file format.", plural,
		))
	case len(res.Errors) > 0:
		res.Warning = fmt.Sprintf("Imported %d %s with some errors: %s",
			res.Imported, plural, strings.Join(sample(res.Errors, warningSampleSize), "; "))
	}
	return res, nil
}

func rowError(err error) string {
	if de, ok := dErrors.As(err); ok && !dErrors.HasCode(err, dErrors.CodeInternal) {
		return de.Message
	}
	return "failed to save record"
}

func sample(errs []string, n int) []string {
	return errs[:min(n, len(errs))]
}
