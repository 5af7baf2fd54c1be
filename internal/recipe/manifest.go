package recipe

import (
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/tidyloom-cli/internal/utils"
)

// Manifest records what a run read, did, and wrote.
type Manifest struct {
	RunID      string        `json:"run_id"`
	Recipe     string        `json:"recipe"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Inputs     []TableRecord `json:"inputs"`
	Steps      []StepRecord  `json:"steps"`
	Outputs    []string      `json:"outputs"`
	Error      string        `json:"error,omitempty"`
}

// TableRecord describes a table loaded from disk.
type TableRecord struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Rows int    `json:"rows"`
	Cols int    `json:"cols"`
}

// StepRecord describes the table a step produced.
type StepRecord struct {
	Index      int    `json:"index"`
	Op         string `json:"op"`
	Table      string `json:"table"`
	Rows       int    `json:"rows"`
	Cols       int    `json:"cols"`
	DurationMS int64  `json:"duration_ms"`
}

func newManifest(name string) *Manifest {
	return &Manifest{
		RunID:     uuid.NewString(),
		Recipe:    name,
		StartedAt: time.Now(),
		Inputs:    []TableRecord{},
		Steps:     []StepRecord{},
		Outputs:   []string{},
	}
}

// Save writes the manifest as indented JSON using atomic write.
func (m *Manifest) Save(path string) error {
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(path, data)
}
