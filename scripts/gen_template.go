// gen_template.go generates a blank acquisition scorecard workbook with the
// standard items and weights, ready to be scored and uploaded.
//
// Usage:
//
//	go run scripts/gen_template.go -out data/TEMPLATE_Acquisition_Scorecard.xlsx
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

type templateRow struct {
	Category string
	Item     string
	Party    string
	Weight   float64
}

var header = []interface{}{
	"Category",
	"Item",
	"Responsible Party for Assessment",
	"Weight",
	"Score (1-5)",
	"Notes",
}

var rows = []templateRow{
	{"Financial", "Quality of earnings (recurring vs one-off revenue)", "CFO", 0.30},
	{"Financial", "Working capital and cash conversion", "CFO", 0.20},
	{"Financial", "Debt, covenants and off-balance-sheet liabilities", "Finance Director", 0.20},
	{"Financial", "Forecast credibility", "FP&A Lead", 0.15},
	{"Legal", "Pending or threatened litigation", "General Counsel", 0.25},
	{"Legal", "Material contracts and change-of-control clauses", "General Counsel", 0.20},
	{"Legal", "IP ownership and licensing", "IP Counsel", 0.20},
	{"Commercial", "Customer concentration", "Head of Sales", 0.25},
	{"Commercial", "Market position and competitive moat", "Strategy Lead", 0.20},
	{"Commercial", "Pipeline and churn trends", "Head of Sales", 0.15},
	{"Technology", "Architecture scalability", "CTO", 0.20},
	{"Technology", "Security posture and incident history", "CISO", 0.20},
	{"Technology", "Technical debt", "CTO", 0.10},
	{"People", "Key person dependency", "HR Director", 0.20},
	{"People", "Culture and retention risk", "HR Director", 0.15},
	{"Operations", "Supply chain resilience", "COO", 0.15},
	{"Operations", "Integration complexity", "Integration Lead", 0.20},
}

const sheetName = "Scorecard"

func main() {
	out := flag.String("out", "data/TEMPLATE_Acquisition_Scorecard.xlsx", "path of the workbook to write")
	flag.Parse()

	f, err := buildTemplate()
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatalf("create directory: %v", err)
	}
	if err := f.SaveAs(*out); err != nil {
		log.Fatalf("save %s: %v", *out, err)
	}
	fmt.Printf("wrote %d items to %s\n", len(rows), *out)
}

func buildTemplate() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		// scores start blank so every item is assessed from scratch
		row := []interface{}{r.Category, r.Item, r.Party, r.Weight, "", ""}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create style: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", "F1", bold); err != nil {
		f.Close()
		return nil, fmt.Errorf("style header: %w", err)
	}
	_ = f.SetColWidth(sheetName, "A", "A", 14)
	_ = f.SetColWidth(sheetName, "B", "B", 52)
	_ = f.SetColWidth(sheetName, "C", "C", 32)
	_ = f.SetColWidth(sheetName, "F", "F", 40)
	return f, nil
}
