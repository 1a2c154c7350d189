package catalog

import (
	"fmt"
	"io"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/alchepastry/pastryadmin/internal/domain"
)

const exportSheet = "Sheet1"

var exportHeader = []string{"id", "name", "category", "price", "description", "stock"}

// WriteCSV writes products as CSV with a header row.
func WriteCSV(w io.Writer, products []domain.Product) error {
	if products == nil {
		products = []domain.Product{}
	}
	if err := gocsv.Marshal(products, w); err != nil {
		return errors.Wrap(err, "marshal catalog csv")
	}
	return nil
}

// WriteXLSX writes products as a single-sheet workbook with the same columns
// as WriteCSV.
func WriteXLSX(w io.Writer, products []domain.Product) error {
	f := excelize.NewFile()
	for col, name := range exportHeader {
		f.SetCellValue(exportSheet, cellName(col, 1), name)
	}
	for i, p := range products {
		row := i + 2
		f.SetCellValue(exportSheet, cellName(0, row), p.ID)
		f.SetCellValue(exportSheet, cellName(1, row), p.Name)
		f.SetCellValue(exportSheet, cellName(2, row), string(p.Category))
		f.SetCellValue(exportSheet, cellName(3, row), p.Price)
		f.SetCellValue(exportSheet, cellName(4, row), p.Description)
		f.SetCellValue(exportSheet, cellName(5, row), p.Stock)
	}
	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "write catalog xlsx")
	}
	return nil
}

// cellName converts a zero-based column and one-based row to A1 notation.
func cellName(col, row int) string {
	return fmt.Sprintf("%s%d", excelize.ToAlphaString(col), row)
}
