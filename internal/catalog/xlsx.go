package catalog

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/signalforge/datamart/internal/model"
)

// ExportXLSX writes the catalog as a price sheet workbook: one row per
// product with tier, period, row count, size, and price.
func ExportXLSX(entries []model.CatalogEntry, path string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Catalog")
	if err != nil {
		return eris.Wrap(err, "catalog: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range []string{"Filename", "Vertical", "Type", "Period", "Rows", "Size", "Price (USD)", "Description"} {
		header.AddCell().Value = col
	}

	for _, e := range entries {
		row := sheet.AddRow()
		row.AddCell().Value = e.Filename
		row.AddCell().Value = e.Vertical
		row.AddCell().Value = string(e.Tier)
		row.AddCell().Value = e.Period
		row.AddCell().SetInt(e.Rows)
		row.AddCell().Value = HumanSize(e.SizeBytes)
		row.AddCell().SetInt(e.Price)
		row.AddCell().Value = e.Description
	}

	if err := file.Save(path); err != nil {
		return eris.Wrapf(err, "catalog: save %s", path)
	}
	return nil
}
