package soc

import (
	"fmt"

	"github.com/sarchlab/socgen/datarecording"
)

// Table names in the recording database.
const (
	TableDomains  = "domains"
	TableCSRMap   = "csr_map"
	TableBringUp  = "bringup"
	TableAnalyzer = "analyzer"
)

// DomainRow describes one clock domain.
type DomainRow struct {
	Name      string
	FreqHz    uint64
	Phase     uint16
	Divide    int
	ResetMode string
	Stride    uint64
	Offset    uint64
}

// Domains lists the clock domains in PLL output order.
func (s *SoC) Domains() []DomainRow {
	rows := make([]DomainRow, 0, len(s.crg.Domains()))

	for _, d := range s.crg.Domains() {
		rows = append(rows, DomainRow{
			Name:      d.Name(),
			FreqHz:    uint64(d.Freq()),
			Phase:     uint16(d.Phase()),
			Divide:    d.Divide(),
			ResetMode: d.ResetMode().String(),
			Stride:    uint64(d.FreqDomain().Stride()),
			Offset:    uint64(d.FreqDomain().Offset()),
		})
	}

	return rows
}

// Artifacts names the files WriteArtifacts produces.
type Artifacts struct {
	CSRCSV      string
	AnalyzerCSV string
}

// WriteArtifacts writes the register map and, when the debug tap is
// enabled, the capture. It returns the paths written.
func (s *SoC) WriteArtifacts(a Artifacts) ([]string, error) {
	var written []string

	if a.CSRCSV != "" {
		if err := s.csr.WriteCSVFile(a.CSRCSV); err != nil {
			return written, fmt.Errorf("soc: write %s: %w", a.CSRCSV, err)
		}

		written = append(written, a.CSRCSV)
	}

	if s.analyzer != nil && a.AnalyzerCSV != "" {
		if err := s.analyzer.WriteCSVFile(a.AnalyzerCSV); err != nil {
			return written, fmt.Errorf("soc: write %s: %w", a.AnalyzerCSV, err)
		}

		written = append(written, a.AnalyzerCSV)
	}

	return written, nil
}

// Record stores the domain table, the register map, the bring-up trace
// and, when the debug tap is enabled, the capture.
func (s *SoC) Record(rec datarecording.DataRecorder) {
	rec.CreateTable(TableDomains, DomainRow{})
	for _, row := range s.Domains() {
		rec.InsertData(TableDomains, row)
	}

	rows := s.csr.Rows()
	if len(rows) > 0 {
		rec.CreateTable(TableCSRMap, rows[0])
		for _, row := range rows {
			rec.InsertData(TableCSRMap, row)
		}
	}

	entries := s.trace.Entries()
	if len(entries) > 0 {
		rec.CreateTable(TableBringUp, entries[0])
		for _, e := range entries {
			rec.InsertData(TableBringUp, e)
		}
	}

	if s.analyzer != nil {
		records := s.analyzer.Records()
		if len(records) > 0 {
			rec.CreateTable(TableAnalyzer, records[0])
			for _, r := range records {
				rec.InsertData(TableAnalyzer, r)
			}
		}
	}

	rec.Flush()
}
