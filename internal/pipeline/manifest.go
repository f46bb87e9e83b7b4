package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ManifestName is written into every completed result directory.
const ManifestName = ".rawflow.yaml"

// Manifest records how a result directory was produced.
type Manifest struct {
	RunID         string    `yaml:"run_id"`
	Source        string    `yaml:"source"`
	SourceBytes   int64     `yaml:"source_bytes"`
	Frames        int       `yaml:"frames"`
	Proxy         string    `yaml:"proxy,omitempty"`
	Poster        string    `yaml:"poster,omitempty"`
	ToolDirectory string    `yaml:"tool_directory"`
	Started       time.Time `yaml:"started"`
	Finished      time.Time `yaml:"finished"`
}

func manifestFor(j *Job, toolDir string) Manifest {
	return Manifest{
		RunID:         j.RunID,
		Source:        j.Source,
		SourceBytes:   j.SourceBytes,
		Frames:        j.Frames,
		Proxy:         j.ProxyFile,
		Poster:        j.PosterFile,
		ToolDirectory: toolDir,
		Started:       j.Started,
		Finished:      j.Finished,
	}
}

// WriteManifest writes m into dir.
func WriteManifest(dir string, m Manifest) error {
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, ManifestName), data, 0o644)
}

// ReadManifest loads the manifest from a result directory.
func ReadManifest(dir string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return m, err
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("decode manifest: %w", err)
	}
	return m, nil
}
