package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/SineadMorris/trainings/internal/ode"
)

type ExportData struct {
	Model      string             `json:"model"`
	Integrator string             `json:"integrator"`
	Days       float64            `json:"days"`
	Step       float64            `json:"step"`
	Vars       []string           `json:"vars"`
	Steps      int                `json:"steps"`
	Times      []float64          `json:"times"`
	States     [][]float64        `json:"states"`
	Params     map[string]float64 `json:"params"`
	Metrics    map[string]float64 `json:"metrics"`
}

func ExportJSON(path string, meta *RunMetadata, tr *ode.Trajectory) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeExport(file, meta, tr)
}

func ExportJSONStdout(meta *RunMetadata, tr *ode.Trajectory) error {
	return writeExport(os.Stdout, meta, tr)
}

func writeExport(w io.Writer, meta *RunMetadata, tr *ode.Trajectory) error {
	data := ExportData{
		Model:      meta.Model,
		Integrator: meta.Integrator,
		Days:       meta.Days,
		Step:       meta.Step,
		Vars:       tr.Vars,
		Steps:      tr.Len(),
		Times:      tr.Times,
		States:     make([][]float64, len(tr.States)),
		Params:     meta.Params,
		Metrics:    meta.Metrics,
	}
	for i, y := range tr.States {
		data.States[i] = y
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
