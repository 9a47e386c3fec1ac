// Package export writes the attribute catalog as an XLSX workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/phenrril/productattr/internal/domain"
)

const (
	SheetAttributes = "Attributes"
	SheetValues     = "Values"
)

var (
	attributeHeader = []interface{}{"ID", "Code", "Name", "Type", "Value type", "Input type", "Unit", "Required", "Searchable", "Filterable", "Multiple", "Sort order", "Status"}
	valueHeader     = []interface{}{"Attribute code", "ID", "Code", "Value", "Label", "Sort order", "Status"}
)

// WriteCatalog writes one row per attribute to the Attributes sheet and one row
// per value to the Values sheet, in the order given.
func WriteCatalog(w io.Writer, attrs []domain.Attribute) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetAttributes); err != nil {
		return err
	}
	if _, err := f.NewSheet(SheetValues); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := writeRow(f, SheetAttributes, 1, attributeHeader); err != nil {
		return err
	}
	if err := writeRow(f, SheetValues, 1, valueHeader); err != nil {
		return err
	}
	_ = f.SetRowStyle(SheetAttributes, 1, 1, bold)
	_ = f.SetRowStyle(SheetValues, 1, 1, bold)

	valueRow := 2
	for i := range attrs {
		a := &attrs[i]
		unit := ""
		if a.Unit != nil {
			unit = *a.Unit
		}
		row := []interface{}{
			a.ID, a.Code, a.Name, string(a.Type), string(a.ValueType), string(a.InputType), unit,
			yesNo(a.IsRequired), yesNo(a.IsSearchable), yesNo(a.IsFilterable), yesNo(a.IsMultiple),
			a.SortOrder, string(a.Status),
		}
		if err := writeRow(f, SheetAttributes, i+2, row); err != nil {
			return err
		}
		for _, v := range a.Values {
			vr := []interface{}{a.Code, v.ID, v.Code, v.Value, v.Label, v.SortOrder, string(v.Status)}
			if err := writeRow(f, SheetValues, valueRow, vr); err != nil {
				return err
			}
			valueRow++
		}
	}

	_ = f.SetColWidth(SheetAttributes, "A", "A", 38)
	_ = f.SetColWidth(SheetAttributes, "B", "C", 24)
	_ = f.SetColWidth(SheetValues, "A", "B", 38)
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
