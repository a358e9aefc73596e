package reference

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSV column indices for data/regions.csv.
// Source: Atlas Brasileiro de Energia Solar (INPE), 2023 data.
const (
	colRegionCode       = 0
	colRegionName       = 1
	colRegionIrradiance = 2
	colRegionEmission   = 3
)

// CSV column indices for data/tariffs.csv.
// Source: ANEEL residential tariffs, 2024 data.
const (
	colTariffCode  = 0
	colTariffName  = 1
	colTariffValue = 2
)

//go:embed data/regions.csv
var regionsCSV string

//go:embed data/tariffs.csv
var tariffsCSV string

// parseRegions parses the region CSV (header row first) into a map keyed by
// state code. Any malformed row fails the whole table: the data is embedded,
// so a bad row is a build defect rather than a runtime condition.
func parseRegions(data string) (map[string]Region, error) {
	records, err := readCSV(data, colRegionEmission+1)
	if err != nil {
		return nil, fmt.Errorf("regions: %w", err)
	}

	regions := make(map[string]Region, len(records))
	for i, record := range records {
		code := normalizeCode(record[colRegionCode])
		if code == "" {
			return nil, fmt.Errorf("regions: row %d: empty state code", i+2)
		}

		irradiance, err := parseNonNegative(record[colRegionIrradiance])
		if err != nil {
			return nil, fmt.Errorf("regions: row %d (%s): irradiance: %w", i+2, code, err)
		}
		emission, err := parseNonNegative(record[colRegionEmission])
		if err != nil {
			return nil, fmt.Errorf("regions: row %d (%s): emission factor: %w", i+2, code, err)
		}

		if _, dup := regions[code]; dup {
			return nil, fmt.Errorf("regions: row %d: duplicate state code %q", i+2, code)
		}
		regions[code] = Region{
			Code:           code,
			Name:           strings.TrimSpace(record[colRegionName]),
			Irradiance:     irradiance,
			EmissionFactor: emission,
		}
	}
	return regions, nil
}

// parseTariffs parses the tariff CSV into a map keyed by state code.
func parseTariffs(data string) (map[string]Tariff, error) {
	records, err := readCSV(data, colTariffValue+1)
	if err != nil {
		return nil, fmt.Errorf("tariffs: %w", err)
	}

	tariffs := make(map[string]Tariff, len(records))
	for i, record := range records {
		code := normalizeCode(record[colTariffCode])
		if code == "" {
			return nil, fmt.Errorf("tariffs: row %d: empty state code", i+2)
		}

		value, err := parseNonNegative(record[colTariffValue])
		if err != nil {
			return nil, fmt.Errorf("tariffs: row %d (%s): %w", i+2, code, err)
		}

		if _, dup := tariffs[code]; dup {
			return nil, fmt.Errorf("tariffs: row %d: duplicate state code %q", i+2, code)
		}
		tariffs[code] = Tariff{
			Code:   code,
			Name:   strings.TrimSpace(record[colTariffName]),
			PerKWh: value,
		}
	}
	return tariffs, nil
}

// readCSV reads every data row of data, skipping the header row, and checks
// that each row has exactly columns fields.
func readCSV(data string, columns int) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(data))
	reader.FieldsPerRecord = columns

	// Skip header row
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func parseNonNegative(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative value %v", v)
	}
	return v, nil
}

// normalizeCode upper-cases and trims a state code so lookups accept "sp" and " SP ".
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
