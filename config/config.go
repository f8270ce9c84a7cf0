// Package config loads the build settings of socgen from a YAML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/socgen/debugtap"
	"github.com/sarchlab/socgen/soc"
)

// ErrInvalidValue is returned when a setting cannot be parsed.
var ErrInvalidValue = errors.New("config: invalid value")

// EnvPrefix starts every environment override.
const EnvPrefix = "SOCGEN_"

// Config is everything a socgen run needs.
type Config struct {
	Platform      string
	Spec          soc.Spec
	Artifacts     soc.Artifacts
	Database      string
	BringUpCycles uint64
	MonitorPort   int
	OpenBrowser   bool
}

// Default returns the Arty build with the outputs under test/.
func Default() Config {
	return Config{
		Platform: "arty",
		Spec:     soc.DefaultSpec(),
		Artifacts: soc.Artifacts{
			CSRCSV:      "test/csr.csv",
			AnalyzerCSV: "test/analyzer.csv",
		},
		BringUpCycles: 1000,
		MonitorPort:   0,
	}
}

type debugTapFile struct {
	Enabled *bool `yaml:"enabled"`
	Depth   int   `yaml:"depth"`
	Phases  []int `yaml:"phases"`
}

type outputFile struct {
	CSRCSV      string `yaml:"csr_csv"`
	AnalyzerCSV string `yaml:"analyzer_csv"`
	Database    string `yaml:"database"`
}

type monitorFile struct {
	Port        int  `yaml:"port"`
	OpenBrowser bool `yaml:"open_browser"`
}

type file struct {
	Platform      string         `yaml:"platform"`
	Identifier    string         `yaml:"identifier"`
	UARTBaud      uint64         `yaml:"uart_baud"`
	DeviceDNA     string         `yaml:"device_dna"`
	BringUpCycles uint64         `yaml:"bringup_cycles"`
	CSRMap        map[string]int `yaml:"csr_map"`
	DebugTap      debugTapFile   `yaml:"debug_tap"`
	Output        outputFile     `yaml:"output"`
	Monitor       monitorFile    `yaml:"monitor"`
}

// Load reads the YAML file at path over the defaults. An empty path keeps
// the defaults. The variables of envFile, if it exists, and then the
// process environment override the file.
func Load(path, envFile string) (Config, error) {
	c := Default()

	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("config: %w", err)
		}

		if err := c.applyYAML(buf); err != nil {
			return c, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	env, err := readEnv(envFile)
	if err != nil {
		return c, err
	}

	if err := c.applyEnv(env); err != nil {
		return c, err
	}

	return c, nil
}

// Parse reads a YAML document over the defaults.
func Parse(buf []byte) (Config, error) {
	c := Default()

	if err := c.applyYAML(buf); err != nil {
		return c, fmt.Errorf("config: %w", err)
	}

	return c, nil
}

func (c *Config) applyYAML(buf []byte) error {
	var f file
	if err := yaml.Unmarshal(buf, &f); err != nil {
		return err
	}

	setString(&c.Platform, f.Platform)
	setString(&c.Spec.Identifier, f.Identifier)
	setString(&c.Artifacts.CSRCSV, f.Output.CSRCSV)
	setString(&c.Artifacts.AnalyzerCSV, f.Output.AnalyzerCSV)
	setString(&c.Database, f.Output.Database)

	if f.UARTBaud != 0 {
		c.Spec.UARTBaud = f.UARTBaud
	}

	if f.BringUpCycles != 0 {
		c.BringUpCycles = f.BringUpCycles
	}

	if f.DeviceDNA != "" {
		dna, err := parseUint("device_dna", f.DeviceDNA)
		if err != nil {
			return err
		}

		c.Spec.DeviceDNA = dna
	}

	if len(f.CSRMap) > 0 {
		c.Spec.CSRMap = make(map[string]int, len(f.CSRMap))
		for name, offset := range f.CSRMap {
			c.Spec.CSRMap[name] = offset
		}
	}

	if f.DebugTap.Enabled != nil {
		c.Spec.DebugTap.Enabled = *f.DebugTap.Enabled
	}

	if f.DebugTap.Depth != 0 {
		c.Spec.DebugTap.Depth = f.DebugTap.Depth
	}

	if f.DebugTap.Phases != nil {
		c.Spec.DebugTap.Phases = phaseTable(f.DebugTap.Phases)
	}

	if f.Monitor.Port != 0 {
		c.MonitorPort = f.Monitor.Port
	}

	c.OpenBrowser = c.OpenBrowser || f.Monitor.OpenBrowser

	return nil
}

func readEnv(envFile string) (map[string]string, error) {
	env := make(map[string]string)

	if envFile != "" {
		fromFile, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			for k, v := range fromFile {
				env[k] = v
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("config: %s: %w", envFile, err)
		}
	}

	for _, kv := range os.Environ() {
		k, v, found := strings.Cut(kv, "=")
		if found && strings.HasPrefix(k, EnvPrefix) {
			env[k] = v
		}
	}

	return env, nil
}

func (c *Config) applyEnv(env map[string]string) error {
	for key, value := range env {
		name, found := strings.CutPrefix(key, EnvPrefix)
		if !found {
			continue
		}

		if err := c.applyEnvVar(name, value); err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) applyEnvVar(name, value string) error {
	var err error

	switch name {
	case "PLATFORM":
		c.Platform = value
	case "CSR_CSV":
		c.Artifacts.CSRCSV = value
	case "ANALYZER_CSV":
		c.Artifacts.AnalyzerCSV = value
	case "DB":
		c.Database = value
	case "UART_BAUD":
		c.Spec.UARTBaud, err = parseUint(name, value)
	case "BRINGUP_CYCLES":
		c.BringUpCycles, err = parseUint(name, value)
	case "DEVICE_DNA":
		c.Spec.DeviceDNA, err = parseUint(name, value)
	case "DEBUG_TAP":
		c.Spec.DebugTap.Enabled, err = parseBool(name, value)
	case "DEBUG_TAP_DEPTH":
		c.Spec.DebugTap.Depth, err = parseInt(name, value)
	case "MONITOR_PORT":
		c.MonitorPort, err = parseInt(name, value)
	case "OPEN_BROWSER":
		c.OpenBrowser, err = parseBool(name, value)
	}

	return err
}

func phaseTable(phases []int) debugtap.PhaseTable {
	t := make(debugtap.PhaseTable)
	for n := range debugtap.DefaultPhaseTable() {
		t[n] = false
	}

	for _, n := range phases {
		t[n] = true
	}

	return t
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func parseUint(name, v string) (uint64, error) {
	n, err := strconv.ParseUint(v, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidValue, name, v)
	}

	return n, nil
}

func parseInt(name, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidValue, name, v)
	}

	return n, nil
}

func parseBool(name, v string) (bool, error) {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", ErrInvalidValue, name, v)
	}

	return b, nil
}
