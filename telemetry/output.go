package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/spray/config"
)

// InjectionEvent is one injected parcel, logged to events.csv.
type InjectionEvent struct {
	Time     float64 `csv:"time"`
	Injector string  `csv:"injector"`
	X        float64 `csv:"x"`
	Y        float64 `csv:"y"`
	Z        float64 `csv:"z"`
	VX       float64 `csv:"vx"`
	VY       float64 `csv:"vy"`
	VZ       float64 `csv:"vz"`
	Diameter float64 `csv:"diameter"`
	Cell     int     `csv:"cell"`
}

// OutputManager handles structured experiment output with CSV logging.
type OutputManager struct {
	dir        string
	windowFile *os.File
	eventFile  *os.File

	// Track if headers have been written
	windowHeaderWritten bool
	eventHeaderWritten  bool
}

// NewOutputManager creates a new output manager and initializes the output
// directory. Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	windowPath := filepath.Join(dir, "windows.csv")
	f, err := os.Create(windowPath)
	if err != nil {
		return nil, fmt.Errorf("creating windows.csv: %w", err)
	}
	om.windowFile = f

	eventPath := filepath.Join(dir, "events.csv")
	f, err = os.Create(eventPath)
	if err != nil {
		om.windowFile.Close()
		return nil, fmt.Errorf("creating events.csv: %w", err)
	}
	om.eventFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	configPath := filepath.Join(om.dir, "config.yaml")
	return cfg.WriteYAML(configPath)
}

// WriteWindow writes a window stats record to windows.csv.
func (om *OutputManager) WriteWindow(stats WindowStats) error {
	if om == nil {
		return nil
	}

	records := []WindowStats{stats}

	if !om.windowHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.windowFile); err != nil {
			return fmt.Errorf("writing window stats: %w", err)
		}
		om.windowHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.windowFile); err != nil {
			return fmt.Errorf("writing window stats: %w", err)
		}
	}

	return nil
}

// WriteEvents writes injection events to events.csv.
func (om *OutputManager) WriteEvents(events []InjectionEvent) error {
	if om == nil || len(events) == 0 {
		return nil
	}

	if !om.eventHeaderWritten {
		if err := gocsv.Marshal(events, om.eventFile); err != nil {
			return fmt.Errorf("writing events: %w", err)
		}
		om.eventHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(events, om.eventFile); err != nil {
			return fmt.Errorf("writing events: %w", err)
		}
	}

	return nil
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() {
	if om == nil {
		return
	}
	om.windowFile.Close()
	om.eventFile.Close()
}
