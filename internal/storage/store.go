package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/SineadMorris/trainings/internal/ode"
)

const (
	metadataFile      = "metadata.json"
	trajectoryFile    = "trajectory.csv"
	trajectoryFileZst = trajectoryFile + ".zst"
)

// Store persists runs under a base directory, one subdirectory per
// run: metadata.json plus the trajectory as CSV, optionally
// zstd-compressed.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Integrator string             `json:"integrator"`
	Timestamp  time.Time          `json:"timestamp"`
	Days       float64            `json:"days"`
	Step       float64            `json:"step"`
	Substep    float64            `json:"substep"`
	Adaptive   bool               `json:"adaptive"`
	Vars       []string           `json:"vars"`
	Params     map[string]float64 `json:"params"`
	Metrics    map[string]float64 `json:"metrics"`
	Incomplete bool               `json:"incomplete"`
}

// Save writes one run directory and returns its ID. A missing ID is
// generated from the model name and save time; Vars and Incomplete are
// filled from the trajectory. Values survive a
// [Store.LoadTrajectory] round trip exactly.
func (s *Store) Save(meta RunMetadata, tr *ode.Trajectory, compress bool) (string, error) {
	if tr == nil {
		return "", fmt.Errorf("storage: nil trajectory")
	}
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s_%d", meta.Model, time.Now().UnixNano())
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if len(meta.Vars) == 0 {
		meta.Vars = tr.Vars
	}
	meta.Incomplete = tr.Incomplete

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		_ = metaFile.Close()
		return "", err
	}
	if err := metaFile.Close(); err != nil {
		return "", err
	}

	name := trajectoryFile
	if compress {
		name = trajectoryFileZst
	}
	file, err := os.Create(filepath.Join(runDir, name))
	if err != nil {
		return "", err
	}
	if compress {
		zw, err := zstd.NewWriter(file, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			_ = file.Close()
			return "", err
		}
		if err := WriteCSV(zw, tr); err != nil {
			_ = zw.Close()
			_ = file.Close()
			return "", err
		}
		if err := zw.Close(); err != nil {
			_ = file.Close()
			return "", err
		}
	} else if err := WriteCSV(file, tr); err != nil {
		_ = file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), metadataFile)
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, metadataFile)
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadTrajectory reads a run's trajectory, handling both the plain and
// the compressed form.
func (s *Store) LoadTrajectory(runID string) (*ode.Trajectory, error) {
	runDir := filepath.Join(s.baseDir, runID)

	if file, err := os.Open(filepath.Join(runDir, trajectoryFile)); err == nil {
		defer file.Close()
		return ReadCSV(file)
	}

	file, err := os.Open(filepath.Join(runDir, trajectoryFileZst))
	if err != nil {
		return nil, fmt.Errorf("run %s has no trajectory: %w", runID, err)
	}
	defer file.Close()

	dec, err := zstd.NewReader(file)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return ReadCSV(dec)
}

// WriteCSV streams a trajectory as CSV: a time column followed by one
// column per variable. Floats use the shortest representation that
// parses back to the same value.
func WriteCSV(w io.Writer, tr *ode.Trajectory) error {
	cw := csv.NewWriter(w)

	header := append([]string{"time"}, tr.Vars...)
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(tr.Vars)+1)
	for i, y := range tr.States {
		row[0] = formatFloat(tr.Times[i])
		for j, v := range y {
			row[j+1] = formatFloat(v)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses WriteCSV output back into a trajectory. Malformed
// files are an error, not a partial result.
func ReadCSV(r io.Reader) (*ode.Trajectory, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("storage: empty trajectory file")
	}
	header := records[0]
	if len(header) < 2 || header[0] != "time" {
		return nil, fmt.Errorf("storage: malformed header %v", header)
	}

	tr := &ode.Trajectory{Vars: append([]string(nil), header[1:]...)}
	for n, record := range records[1:] {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("storage: row %d: %w", n+1, err)
		}
		y := make(ode.State, len(record)-1)
		for j, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: row %d: %w", n+1, err)
			}
			y[j] = v
		}
		tr.Times = append(tr.Times, t)
		tr.States = append(tr.States, y)
	}
	return tr, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
