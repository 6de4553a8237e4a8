package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"rpscreen/internal/importer/metrics"
	"rpscreen/internal/records/models"
	"rpscreen/internal/records/service"
	"rpscreen/internal/records/store"
	"rpscreen/internal/storage"
	dErrors "rpscreen/pkg/domain-errors"
)

// workbook builds an .xlsx with rows written to the first sheet.
func workbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func newRecords(t *testing.T) *service.Service {
	dir := t.TempDir()
	seq := storage.OpenSequences(dir)
	return service.New(store.NewCustomerStore(dir, seq), store.NewRestrictedPartyStore(dir, seq))
}

func TestReadXLSX(t *testing.T) {
	buf := workbook(t,
		[]any{" Name ", "Address"},
		[]any{"Acme Corp", "1 Main St"},
		[]any{"Globex"},
	)

	table, err := ReadXLSX(buf)
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Address"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"Acme Corp", "1 Main St"}, table.Rows[0])
	assert.Equal(t, []string{"Globex"}, table.Rows[1])
}

func TestReadXLSXRejectsGarbage(t *testing.T) {
	_, err := ReadXLSX(bytes.NewBufferString("name,address\nacme,here\n"))
	assert.Error(t, err)
}

func TestImportCustomersReportsEmptyNames(t *testing.T) {
	ctx := context.Background()
	records := newRecords(t)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	imp := New(records, WithMetrics(m))

	table, err := ReadXLSX(workbook(t,
		[]any{"Name", "Address", "Email"},
		[]any{"Acme Corp", "1 Main St", "ops@acme.test"},
		[]any{"", "2 Side St"},
		[]any{"Globex", "", "  info@globex.test "},
	))
	require.NoError(t, err)

	res, err := imp.ImportCustomers(ctx, table)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, []string{"Row 3: Name is empty"}, res.Errors)
	assert.Equal(t, "Imported 2 customers with some errors: Row 3: Name is empty", res.Warning)

	customers := records.ListCustomers(ctx)
	require.Len(t, customers, 2)
	assert.Equal(t, "1 Main St", customers[0].Address)
	assert.Equal(t, "info@globex.test", customers[1].Email)
	assert.Empty(t, customers[1].Phone)

	assert.Equal(t, 2.0, promtest.ToFloat64(m.RowsTotal.WithLabelValues("customers", "imported")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.RowsTotal.WithLabelValues("customers", "failed")))
}

func TestImportRequiresNameColumn(t *testing.T) {
	imp := New(newRecords(t))

	_, err := imp.ImportCustomers(context.Background(), Table{
		Header: []string{"Customer", "Address", "", "Address"},
		Rows:   [][]string{{"Acme", "here"}},
	})

	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	de, _ := dErrors.As(err)
	assert.Equal(t, "Missing required columns: Name. Available columns: Customer, Address", de.Message)
}

func TestImportWithOnlyErrorsFails(t *testing.T) {
	rows := make([][]string, 7)
	for i := range rows {
		rows[i] = []string{"  ", "x"}
	}

	_, err := New(newRecords(t)).ImportRestrictedParties(context.Background(), Table{
		Header: []string{"Name", "Reason"},
		Rows:   rows,
	})

	require.Error(t, err)
	de, ok := dErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, dErrors.CodeValidation, de.Code)
	assert.Equal(t, "No restricted parties imported. Errors: Row 2: Name is empty; Row 3: Name is empty; "+
		"Row 4: Name is empty; Row 5: Name is empty; Row 6: Name is empty", de.Message)
}

func TestImportOfHeaderOnlySheetFails(t *testing.T) {
	_, err := New(newRecords(t)).ImportCustomers(context.Background(), Table{Header: []string{"Name"}})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestImportRestrictedParties(t *testing.T) {
	ctx := context.Background()
	records := newRecords(t)

	res, err := New(records).ImportRestrictedParties(ctx, Table{
		Header: []string{"Source", "Name", "Reason"},
		Rows:   [][]string{{"OFAC", "Ivan Petrov", "sanctions"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Imported)
	assert.Empty(t, res.Warning)
	parties := records.ListRestrictedParties(ctx)
	require.Len(t, parties, 1)
	assert.Equal(t, models.RestrictedParty{
		ID:          1,
		Name:        "Ivan Petrov",
		Reason:      "sanctions",
		Source:      "OFAC",
		CreatedDate: parties[0].CreatedDate,
	}, parties[0])
}

type flakyRecords struct {
	*service.Service
	failOn string
}

func (f flakyRecords) CreateCustomer(ctx context.Context, in models.NewCustomerInput) (*models.Customer, error) {
	if in.Name == f.failOn {
		return nil, dErrors.Wrap(errors.New("disk full"), dErrors.CodeInternal, "failed to persist records")
	}
	return f.Service.CreateCustomer(ctx, in)
}

func TestImportContinuesPastFailedRows(t *testing.T) {
	records := flakyRecords{Service: newRecords(t), failOn: "Bad"}
	rows := [][]string{{"Good 1"}, {"Bad"}, {""}, {"Good 2"}, {"Bad"}}

	res, err := New(records).ImportCustomers(context.Background(), Table{Header: []string{"Name"}, Rows: rows})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, []string{
		"Row 3: failed to save record",
		"Row 4: Name is empty",
		"Row 6: failed to save record",
	}, res.Errors)
	assert.Equal(t, fmt.Sprintf("Imported 2 customers with some errors: %s; %s; %s",
		res.Errors[0], res.Errors[1], res.Errors[2]), res.Warning)
}
