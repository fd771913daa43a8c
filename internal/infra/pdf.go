package infra

// pdf.go — inventory report generation using go-pdf/fpdf.
// Renders an A4 snapshot of the catalog: header with totals, then a table of
// products (name, barcode, category, quantity, minimum) with low-stock rows
// flagged. The output file is saved to storagePath/inventario_{date}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/model"

	"github.com/go-pdf/fpdf"
)

// InventoryReportData is everything the report needs, pre-aggregated by the
// stats service so this layer stays presentation-only.
type InventoryReportData struct {
	GeneratedAt   time.Time
	TotalProducts int
	TotalUnits    int
	LowStockCount int
	Products      []model.Product
}

// GenerateInventoryReport writes the inventory snapshot PDF and returns the
// absolute path to the generated file.
func GenerateInventoryReport(data InventoryReportData, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("inventario_%s.pdf", data.GeneratedAt.Format("20060102_150405"))
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentW, 8, "Inventario Almacén", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, data.GeneratedAt.Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW/3, 6, fmt.Sprintf("Productos: %d", data.TotalProducts), "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/3, 6, fmt.Sprintf("Unidades: %d", data.TotalUnits), "", 0, "C", false, 0, "")
	pdf.CellFormat(contentW/3, 6, fmt.Sprintf("Stock bajo: %d", data.LowStockCount), "", 1, "R", false, 0, "")
	pdf.Ln(2)

	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(2)

	// ── Table header ─────────────────────────────────────────────────────────
	col1 := contentW * 0.34 // name
	col2 := contentW * 0.24 // barcode
	col3 := contentW * 0.20 // category
	col4 := contentW * 0.11 // quantity
	col5 := contentW * 0.11 // min stock

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(col1, 6, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Código", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "Categoría", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 6, "Stock", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col5, 6, "Mínimo", "B", 1, "R", false, 0, "")

	// ── Rows ─────────────────────────────────────────────────────────────────
	for _, p := range data.Products {
		if p.LowStock() {
			pdf.SetFont("Helvetica", "B", 8)
		} else {
			pdf.SetFont("Helvetica", "", 8)
		}
		name := p.Name
		if len(name) > 38 {
			name = name[:37] + "…"
		}
		pdf.CellFormat(col1, 5, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, p.Barcode, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, p.Category, "", 0, "L", false, 0, "")
		pdf.CellFormat(col4, 5, fmt.Sprintf("%d", p.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(col5, 5, fmt.Sprintf("%d", p.MinStock), "", 1, "R", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
