package seeder

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/alexivanou/city-api/internal/config"
	"github.com/alexivanou/city-api/internal/model"
)

const (
	defaultBatchSize = 1000

	// geonames main table columns
	colName       = 1
	colLatitude   = 4
	colLongitude  = 5
	colPopulation = 14
	minColumns    = 15
)

// Parser streams a GeoNames cities dump (citiesNNNN.txt or its .zip)
type Parser struct {
	dataDir       string
	fileName      string
	batchSize     int
	minPopulation int
}

// NewParser creates a new parser instance with config
func NewParser(cfg config.SeederConfig) *Parser {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Parser{
		dataDir:       cfg.DataDir,
		fileName:      cfg.FileName,
		batchSize:     batchSize,
		minPopulation: cfg.MinPopulation,
	}
}

// ProcessCities reads the dump and hands batches of cities to callback.
// Rows below the population threshold, malformed rows and repeated names
// (compared case-insensitively) are skipped. It returns the number of
// cities delivered.
func (p *Parser) ProcessCities(callback func(batch []model.City) error) (int, error) {
	txtPath := filepath.Join(p.dataDir, p.fileName)
	zipPath := strings.TrimSuffix(txtPath, filepath.Ext(txtPath)) + ".zip"

	// Prefer the zip if present
	if _, err := os.Stat(zipPath); err == nil {
		return p.processZip(zipPath, callback)
	}

	file, err := os.Open(txtPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", p.fileName, err)
	}
	defer file.Close()

	return p.processReader(file, callback)
}

func (p *Parser) processZip(zipPath string, callback func(batch []model.City) error) (int, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if !strings.HasSuffix(f.Name, ".txt") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return 0, fmt.Errorf("failed to open file in zip: %w", err)
		}
		defer rc.Close()
		return p.processReader(rc, callback)
	}

	return 0, fmt.Errorf("no txt file found in zip")
}

func (p *Parser) processReader(reader io.Reader, callback func(batch []model.City) error) (int, error) {
	buf := make([]byte, 0, 64*1024)
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(buf, 1024*1024)

	batch := make([]model.City, 0, p.batchSize)
	seen := make(map[string]struct{})
	total := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := callback(batch); err != nil {
			return fmt.Errorf("city callback error: %w", err)
		}
		total += len(batch)
		batch = make([]model.City, 0, p.batchSize)
		return nil
	}

	for scanner.Scan() {
		city, ok := p.parseLine(scanner.Text())
		if !ok {
			continue
		}

		key := model.NameKey(city.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		batch = append(batch, city)
		if len(batch) >= p.batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return total, fmt.Errorf("failed to scan cities: %w", err)
	}
	if err := flush(); err != nil {
		return total, err
	}

	return total, nil
}

func (p *Parser) parseLine(line string) (model.City, bool) {
	if line == "" || strings.HasPrefix(line, "#") {
		return model.City{}, false
	}

	parts := strings.Split(line, "\t")
	if len(parts) < minColumns {
		return model.City{}, false
	}

	population, err := strconv.Atoi(parts[colPopulation])
	if err != nil || population < p.minPopulation {
		return model.City{}, false
	}

	name := strings.TrimSpace(parts[colName])
	if name == "" || utf8.RuneCountInString(name) > model.MaxNameLength {
		return model.City{}, false
	}

	lat, err := strconv.ParseFloat(parts[colLatitude], 64)
	if err != nil || lat < -90 || lat > 90 {
		return model.City{}, false
	}

	lon, err := strconv.ParseFloat(parts[colLongitude], 64)
	if err != nil || lon < -180 || lon > 180 {
		return model.City{}, false
	}

	return model.City{Name: name, Latitude: lat, Longitude: lon}, true
}
