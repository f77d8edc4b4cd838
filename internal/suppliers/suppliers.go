// Package suppliers loads the CNPJ/CPF-to-payer-identifier mapping the
// SOAP submitter consults before posting a payment code. It replaces
// the source's function-attribute memoization with a process-wide,
// read-only map built once at startup (spec §9).
package suppliers

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Directory maps a normalized tax identifier (digits only) to its
// IDPGTO payer identifier.
type Directory struct {
	byTaxID map[string]int
}

// Load reads a semicolon-delimited CSV with a header row containing
// "IDPGTO" and "CNPJ/CPF" columns (spec §6 "CSV mapping format").
func Load(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("suppliers: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("suppliers: read header: %w", err)
	}

	idCol, taxCol := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(strings.ToUpper(col)) {
		case "IDPGTO":
			idCol = i
		case "CNPJ/CPF":
			taxCol = i
		}
	}
	if idCol == -1 || taxCol == -1 {
		return nil, fmt.Errorf("suppliers: header missing IDPGTO or CNPJ/CPF column")
	}

	byTaxID := make(map[string]int)
	for {
		record, err := r.Read()
		if err != nil {
			break
		}
		if idCol >= len(record) || taxCol >= len(record) {
			continue
		}

		idpgto, err := strconv.Atoi(strings.TrimSpace(record[idCol]))
		if err != nil {
			continue
		}

		taxID := onlyDigits(record[taxCol])
		if taxID == "" {
			continue
		}
		byTaxID[taxID] = idpgto
	}

	return &Directory{byTaxID: byTaxID}, nil
}

// Lookup returns the payer identifier registered for taxID (digits
// only; formatting characters are stripped before lookup).
func (d *Directory) Lookup(taxID string) (int, bool) {
	id, ok := d.byTaxID[onlyDigits(taxID)]
	return id, ok
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
