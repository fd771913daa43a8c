package service

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCreateProduct(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewProductService(repo, nil)

	resp, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Barcode:  "7790895000430",
		Name:     "Coca-Cola 2L",
		Category: "Gaseosas",
		Quantity: 48,
		MinStock: 12,
	})
	require.NoError(t, err)

	assert.Equal(t, "Coca-Cola 2L", resp.Name)
	assert.Equal(t, "unidad", resp.Unit) // default when omitted
	assert.Equal(t, 48, resp.Quantity)
	assert.True(t, resp.Active)
}

func TestCreateDuplicateBarcode(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewProductService(repo, nil)
	seedProduct(repo, "Coca-Cola 2L", "7790895000430", 48, 12)

	_, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Barcode:  "7790895000430",
		Name:     "Coca-Cola 2L Retornable",
		Category: "Gaseosas",
	})
	assert.ErrorIs(t, err, ErrBarcodeTaken)
}

func TestGetByBarcode(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewProductService(repo, nil) // nil Redis — cache is best-effort
	seedProduct(repo, "Agua Mineral 1.5L", "7790742000117", 60, 15)

	resp, err := svc.GetByBarcode(context.Background(), "7790742000117")
	require.NoError(t, err)
	assert.Equal(t, "Agua Mineral 1.5L", resp.Name)
	assert.Equal(t, 60, resp.Quantity)

	_, err = svc.GetByBarcode(context.Background(), "9999999999999")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestResolveBarcodeKnownProduct(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewProductService(repo, nil)
	p := seedProduct(repo, "Cerveza Rubia 1L", "7793147000257", 36, 10)

	sp, err := svc.ResolveBarcode(context.Background(), "7793147000257")
	require.NoError(t, err)
	assert.Equal(t, p.ID.String(), sp.ID)
	assert.Equal(t, 36, sp.Quantity)
	assert.False(t, sp.Unresolved)
}

func TestResolveBarcodeUnknownYieldsPlaceholder(t *testing.T) {
	svc := NewProductService(newStubProductRepo(), nil)

	sp, err := svc.ResolveBarcode(context.Background(), "4006381333931")
	require.NoError(t, err) // not found is not an error for the scan flow

	assert.True(t, sp.Unresolved)
	assert.Equal(t, "4006381333931", sp.Barcode)
	assert.Empty(t, sp.ID)
	assert.Equal(t, 0, sp.Quantity)
}

func TestUpdatePartialFields(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewProductService(repo, nil)
	p := seedProduct(repo, "Jugo de Naranja 1L", "7794000960077", 30, 8)

	newMin := 10
	resp, err := svc.Update(context.Background(), p.ID, dto.UpdateProductRequest{MinStock: &newMin})
	require.NoError(t, err)

	assert.Equal(t, 10, resp.MinStock)
	assert.Equal(t, "Jugo de Naranja 1L", resp.Name) // untouched fields survive
	assert.Equal(t, 30, resp.Quantity)
}

func TestDeactivateHidesFromBarcodeLookup(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewProductService(repo, nil)
	p := seedProduct(repo, "Soda 2L", "7790070410132", 24, 6)

	require.NoError(t, svc.Deactivate(context.Background(), p.ID))

	_, err := svc.GetByBarcode(context.Background(), "7790070410132")
	assert.ErrorIs(t, err, ErrProductNotFound)

	require.NoError(t, svc.Reactivate(context.Background(), p.ID))
	_, err = svc.GetByBarcode(context.Background(), "7790070410132")
	assert.NoError(t, err)
}

// ── XLSX import ──────────────────────────────────────────────────────────────

func buildCatalogSheet(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		require.NoError(t, f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImportXLSXCreatesAndUpdates(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewProductService(repo, nil)
	seedProduct(repo, "Coca-Cola 2L", "7790895000430", 48, 12)

	buf := buildCatalogSheet(t, [][]interface{}{
		{"nombre", "codigo", "categoria", "unidad", "cantidad", "minimo"}, // header
		{"Coca-Cola 2L", "7790895000430", "Gaseosas", "botella", "48", "15"},
		{"Agua Mineral 1.5L", "7790742000117", "Aguas", "botella", "60", "15"},
		{"", "", "", "", "", ""}, // blank row
		{"Sin Codigo", "", "Otros", "unidad", "3", "1"},
	})

	result, err := svc.ImportXLSX(context.Background(), buf)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 2, result.Skipped)
	assert.Len(t, result.Errors, 1) // the missing-barcode row is reported

	// The update path rewrites catalog fields but never stock.
	updated, err := repo.FindByBarcode(context.Background(), "7790895000430")
	require.NoError(t, err)
	assert.Equal(t, 15, updated.MinStock)
	assert.Equal(t, 48, updated.Quantity)

	created, err := repo.FindByBarcode(context.Background(), "7790742000117")
	require.NoError(t, err)
	assert.Equal(t, 60, created.Quantity)
}

func TestImportXLSXWithoutHeader(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewProductService(repo, nil)

	buf := buildCatalogSheet(t, [][]interface{}{
		{"Cerveza Negra 473ml", "7793147000264", "Cervezas", "lata", "72", "18"},
	})

	result, err := svc.ImportXLSX(context.Background(), buf)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Skipped)
}
