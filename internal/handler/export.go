package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"knowledge-hub/internal/models"
	"knowledge-hub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Knowledge"

var exportHeaders = []string{"Title", "Summary", "Impact", "Tags", "Author", "Created"}

// ExportHandler downloads the knowledge feed as CSV or XLSX.
type ExportHandler struct {
	items repository.KnowledgeRepository
	now   func() time.Time
}

func NewExportHandler(items repository.KnowledgeRepository) *ExportHandler {
	return &ExportHandler{items: items, now: time.Now}
}

func exportRow(it models.KnowledgeItem) []string {
	return []string{
		it.Title,
		it.Summary,
		string(it.Impact),
		strings.Join(it.Tags, "; "),
		it.Author.Email,
		it.CreatedAt.UTC().Format("2006-01-02 15:04"),
	}
}

func (h *ExportHandler) ExportCSV(c *gin.Context) {
	items, err := h.items.All(c.Request.Context())
	if err != nil {
		internalError(c, "export_csv", err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"knowledge_%s.csv\"",
		h.now().Format("20060102")))

	// UTF-8 BOM so that Excel detects the encoding
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(c.Writer)
	_ = w.Write(exportHeaders)
	for _, it := range items {
		_ = w.Write(exportRow(it))
	}
	w.Flush()
}

func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	items, err := h.items.All(c.Request.Context())
	if err != nil {
		internalError(c, "export_xlsx", err)
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		internalError(c, "export_xlsx", err)
		return
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, header)
	}
	for r, it := range items {
		for col, value := range exportRow(it) {
			cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
			_ = f.SetCellValue(exportSheet, cell, value)
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 30)
	_ = f.SetColWidth(exportSheet, "B", "B", 50)
	_ = f.SetColWidth(exportSheet, "C", "C", 10)
	_ = f.SetColWidth(exportSheet, "D", "E", 25)
	_ = f.SetColWidth(exportSheet, "F", "F", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		internalError(c, "export_xlsx", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"knowledge_%s.xlsx\"",
		h.now().Format("20060102")))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
