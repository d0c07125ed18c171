package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// catalogColumns are the import/template headers keyed by field.
var catalogColumns = []struct {
	Key      string
	Label    string
	Required bool
}{
	{"service", "Servicio", true},
	{"name", "Producto", true},
	{"description", "Descripción", false},
	{"price", "Precio", true},
}

// ImportError is a single field-level problem on one row.
type ImportError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImportResult is returned after parsing and validating a catalog file.
type ImportResult struct {
	TotalRows int           `json:"total_rows"`
	ValidRows int           `json:"valid_rows"`
	ErrorRows int           `json:"error_rows"`
	Errors    []ImportError `json:"errors"`
	Products  []Product     `json:"-"`
	FileName  string        `json:"-"`
}

// ImportSummary counts what ImportCatalog changed.
type ImportSummary struct {
	ServicesCreated int
	ProductsCreated int
	ProductsUpdated int
}

func parseCSV(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(all) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return all[0], all[1:], nil
}

func parseExcel(r io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return rows[0], rows[1:], nil
}

// mapCatalogHeaders returns the field key for each column; unknown columns
// map to "".
func mapCatalogHeaders(headers []string) []string {
	labelToKey := make(map[string]string, len(catalogColumns))
	for _, c := range catalogColumns {
		labelToKey[strings.ToLower(c.Label)] = c.Key
		labelToKey[c.Key] = c.Key
	}
	keys := make([]string, len(headers))
	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		norm = strings.TrimSpace(strings.TrimSuffix(norm, "*"))
		keys[i] = labelToKey[norm]
	}
	return keys
}

// parseCLPAmount reads a peso amount written either plainly or the es-CL
// way ("$1.200.000").
func parseCLPAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, " ", "")
	if strings.Count(s, ".") > 1 || strings.Contains(s, ",") || (strings.Contains(s, ".") && len(s)-strings.Index(s, ".") == 4) {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return cast.ToFloat64E(s)
}

// ParseCatalogFile reads a .csv or .xlsx product list and validates every
// row. Rows with errors are reported and left out of Products.
func ParseCatalogFile(r io.Reader, fileName string) (*ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	var headers []string
	var rows [][]string
	ext := strings.ToLower(filepath.Ext(fileName))
	switch {
	case mimetype.Detect(data).Is(xlsxMIME) || ext == ".xlsx":
		headers, rows, err = parseExcel(bytes.NewReader(data))
	case ext == ".csv" || mimetype.Detect(data).Is("text/csv"):
		headers, rows, err = parseCSV(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported file format: must be .csv or .xlsx")
	}
	if err != nil {
		return nil, err
	}

	keys := mapCatalogHeaders(headers)
	result := &ImportResult{TotalRows: len(rows), FileName: fileName}
	errorRows := map[int]bool{}

	for i, row := range rows {
		rowNum := i + 2
		values := make(map[string]string, len(catalogColumns))
		for col, key := range keys {
			if key != "" && col < len(row) {
				values[key] = strings.TrimSpace(row[col])
			}
		}

		var rowErrs []ImportError
		for _, c := range catalogColumns {
			if c.Required && values[c.Key] == "" {
				rowErrs = append(rowErrs, ImportError{Row: rowNum, Field: c.Label, Message: c.Label + " es obligatorio"})
			}
		}

		var price float64
		if v := values["price"]; v != "" {
			price, err = parseCLPAmount(v)
			if err != nil {
				rowErrs = append(rowErrs, ImportError{Row: rowNum, Field: "Precio", Message: fmt.Sprintf("%q no es un monto válido", v)})
			} else if price < 0 {
				rowErrs = append(rowErrs, ImportError{Row: rowNum, Field: "Precio", Message: "el precio no puede ser negativo"})
			}
		}

		if len(rowErrs) > 0 {
			result.Errors = append(result.Errors, rowErrs...)
			errorRows[rowNum] = true
			continue
		}
		result.Products = append(result.Products, Product{
			ServiceName: values["service"],
			Name:        values["name"],
			Description: values["description"],
			Price:       price,
			Status:      CatalogActive,
		})
	}

	result.ErrorRows = len(errorRows)
	result.ValidRows = result.TotalRows - result.ErrorRows
	return result, nil
}

// ImportCatalog stores parsed products. Missing services are created and
// a product whose name already exists under its service is updated in place.
func ImportCatalog(app core.App, products []Product) (ImportSummary, error) {
	var summary ImportSummary
	err := app.RunInTransaction(func(txApp core.App) error {
		servicesCol, err := txApp.FindCollectionByNameOrId("services")
		if err != nil {
			return fmt.Errorf("services collection: %w", err)
		}
		productsCol, err := txApp.FindCollectionByNameOrId("products")
		if err != nil {
			return fmt.Errorf("products collection: %w", err)
		}

		serviceIDs := map[string]string{}
		for _, p := range products {
			key := strings.ToLower(strings.TrimSpace(p.ServiceName))
			serviceID, ok := serviceIDs[key]
			if !ok {
				existing, err := txApp.FindRecordsByFilter(servicesCol, "name ~ {:name}", "", 0, 0,
					map[string]any{"name": p.ServiceName})
				if err != nil {
					return fmt.Errorf("find service %q: %w", p.ServiceName, err)
				}
				for _, rec := range existing {
					if strings.EqualFold(rec.GetString("name"), p.ServiceName) {
						serviceID = rec.Id
						break
					}
				}
				if serviceID == "" {
					rec := core.NewRecord(servicesCol)
					rec.Set("name", strings.TrimSpace(p.ServiceName))
					rec.Set("status", CatalogActive)
					if err := txApp.Save(rec); err != nil {
						return fmt.Errorf("create service %q: %w", p.ServiceName, err)
					}
					serviceID = rec.Id
					summary.ServicesCreated++
				}
				serviceIDs[key] = serviceID
			}

			existing, err := txApp.FindRecordsByFilter(productsCol, "service = {:service} && name ~ {:name}", "", 0, 0,
				map[string]any{"service": serviceID, "name": p.Name})
			if err != nil {
				return fmt.Errorf("find product %q: %w", p.Name, err)
			}
			var rec *core.Record
			for _, r := range existing {
				if strings.EqualFold(r.GetString("name"), p.Name) {
					rec = r
					break
				}
			}
			if rec == nil {
				rec = core.NewRecord(productsCol)
				rec.Set("service", serviceID)
				rec.Set("name", strings.TrimSpace(p.Name))
				rec.Set("status", CatalogActive)
				summary.ProductsCreated++
			} else {
				summary.ProductsUpdated++
			}
			if p.Description != "" {
				rec.Set("description", p.Description)
			}
			rec.Set("price", p.Price)
			if err := txApp.Save(rec); err != nil {
				return fmt.Errorf("save product %q: %w", p.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return ImportSummary{}, err
	}
	return summary, nil
}

// GenerateCatalogTemplate creates the .xlsx upload template with one
// example row. Required headers carry a trailing " *".
func GenerateCatalogTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Productos"
	f.SetSheetName(f.GetSheetName(0), sheetName)

	requiredStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F3864"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}
	optionalStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#6B7280"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}

	example := []any{"Sonido", "Parlante activo 1000W", "Incluye atril", 45000}
	for i, c := range catalogColumns {
		col := string(rune('A' + i))
		label, style := c.Label, optionalStyle
		if c.Required {
			label, style = label+" *", requiredStyle
		}
		f.SetCellValue(sheetName, col+"1", label)
		f.SetCellStyle(sheetName, col+"1", col+"1", style)
		f.SetCellValue(sheetName, col+"2", example[i])
		f.SetColWidth(sheetName, col, col, 28)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write template: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateErrorReport creates a downloadable .xlsx listing import errors.
func GenerateErrorReport(errs []ImportError) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Errores"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DC2626"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})

	f.SetCellValue(sheet, "A1", "Fila")
	f.SetCellValue(sheet, "B1", "Campo")
	f.SetCellValue(sheet, "C1", "Error")
	f.SetCellStyle(sheet, "A1", "C1", headerStyle)
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 22)
	f.SetColWidth(sheet, "C", "C", 55)

	for i, e := range errs {
		row := fmt.Sprintf("%d", i+2)
		f.SetCellValue(sheet, "A"+row, e.Row)
		f.SetCellValue(sheet, "B"+row, e.Field)
		f.SetCellValue(sheet, "C"+row, e.Message)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write error report: %w", err)
	}
	return buf.Bytes(), nil
}
