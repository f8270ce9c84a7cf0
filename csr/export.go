package csr

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Row kinds of the exported map.
const (
	RowBase         = "csr_base"
	RowRegister     = "csr_register"
	RowConstant     = "constant"
	RowMemoryRegion = "memory_region"
)

// Row is one line of the exported address map.
type Row struct {
	Kind  string
	Name  string
	Value string
	Size  string
	Mode  string
}

// Rows lists the bound banks and their registers, then the constants and
// the memory regions. Reserved banks without registers are left out.
func (m *Map) Rows() []Row {
	var rows []Row

	for _, b := range m.BoundBanks() {
		rows = append(rows, Row{
			Kind:  RowBase,
			Name:  b.Name,
			Value: hex(b.Base),
		})
	}

	for _, b := range m.BoundBanks() {
		addr := b.Base
		for _, r := range b.Registers {
			words := r.Words(m.cfg.DataWidth)
			rows = append(rows, Row{
				Kind:  RowRegister,
				Name:  b.Name + "_" + r.Name,
				Value: hex(addr),
				Size:  fmt.Sprint(words),
				Mode:  string(r.Mode),
			})
			addr += uint64(words) * m.cfg.WordBytes
		}
	}

	for _, c := range m.constants {
		rows = append(rows, Row{
			Kind:  RowConstant,
			Name:  c.Name,
			Value: c.Value,
		})
	}

	for _, r := range m.regions {
		rows = append(rows, Row{
			Kind:  RowMemoryRegion,
			Name:  r.Name,
			Value: hex(r.Base),
			Size:  fmt.Sprint(r.Size),
			Mode:  r.Kind,
		})
	}

	return rows
}

// WriteCSV writes the map in csr.csv format.
func (m *Map) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	for _, r := range m.Rows() {
		err := cw.Write([]string{r.Kind, r.Name, r.Value, r.Size, r.Mode})
		if err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

// WriteCSVFile writes the map to a file, creating parent directories.
func (m *Map) WriteCSVFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return m.WriteCSV(f)
}

func hex(v uint64) string {
	return fmt.Sprintf("0x%08x", v)
}
