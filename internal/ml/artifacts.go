package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/edusignal/student-risk-hub/internal/ml/models"
)

// scalerArtifact is the file name of the persisted scaler; model
// artifacts are named <model name>.json.
const scalerArtifact = "scaler.json"

// knownModelNames lists the artifacts LoadModels probes for. Absence of
// any subset is tolerated; the ensemble degrades accordingly.
var knownModelNames = []string{models.LogisticName, models.ForestName}

// artifactEnvelope wraps a persisted model or scaler with enough
// metadata to decode it back into the right concrete type.
type artifactEnvelope struct {
	Kind    string         `json:"kind"`
	SavedAt time.Time      `json:"saved_at"`
	Payload map[string]any `json:"payload"`
}

// ArtifactStore persists fitted models and the scaler as JSON files in
// one directory. Writes are atomic (tmp file + rename), so a failed
// save never corrupts a previously persisted artifact.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore returns a store rooted at dir. The directory is
// created on the first save.
func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{dir: dir}
}

// Dir returns the artifact directory.
func (s *ArtifactStore) Dir() string {
	return s.dir
}

// SaveModel persists a fitted model under its artifact name.
func (s *ArtifactStore) SaveModel(m Model) error {
	return s.write(m.Name()+".json", m.Name(), m)
}

// SaveScaler persists the fitted scaler.
func (s *ArtifactStore) SaveScaler(sc *StandardScaler) error {
	return s.write(scalerArtifact, "scaler", sc)
}

// LoadScaler loads the persisted scaler. Returns (nil, nil) when no
// scaler artifact exists.
func (s *ArtifactStore) LoadScaler() (*StandardScaler, error) {
	env, err := s.read(scalerArtifact)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var sc StandardScaler
	if err := decodePayload(env.Payload, &sc); err != nil {
		return nil, fmt.Errorf("decode scaler artifact: %w", err)
	}
	return &sc, nil
}

// LoadModels loads every known model artifact that is present. Missing
// files are skipped; a corrupt file is reported through the returned
// error map entry but does not prevent other models from loading.
func (s *ArtifactStore) LoadModels() (map[string]Model, map[string]error) {
	loaded := make(map[string]Model)
	failed := make(map[string]error)

	for _, name := range knownModelNames {
		env, err := s.read(name + ".json")
		if err != nil {
			if !os.IsNotExist(err) {
				failed[name] = err
			}
			continue
		}

		m, err := decodeModel(env)
		if err != nil {
			failed[name] = err
			continue
		}
		loaded[name] = m
	}
	return loaded, failed
}

func decodeModel(env *artifactEnvelope) (Model, error) {
	switch env.Kind {
	case models.LogisticName:
		var m models.LogisticRegression
		if err := decodePayload(env.Payload, &m); err != nil {
			return nil, err
		}
		return &m, nil
	case models.ForestName:
		var m models.RandomForest
		if err := decodePayload(env.Payload, &m); err != nil {
			return nil, err
		}
		return &m, nil
	default:
		return nil, fmt.Errorf("unknown model kind %q", env.Kind)
	}
}

// decodePayload maps the generic JSON payload onto a concrete struct.
// WeaklyTypedInput tolerates JSON numbers arriving as float64 for int
// fields.
func decodePayload(payload map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(payload)
}

func (s *ArtifactStore) write(filename, kind string, v any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s artifact: %w", kind, err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("normalize %s artifact: %w", kind, err)
	}

	data, err := json.MarshalIndent(artifactEnvelope{
		Kind:    kind,
		SavedAt: time.Now().UTC(),
		Payload: payload,
	}, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(s.dir, filename)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s artifact: %w", kind, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit %s artifact: %w", kind, err)
	}
	return nil
}

func (s *ArtifactStore) read(filename string) (*artifactEnvelope, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filename))
	if err != nil {
		return nil, err
	}

	var env artifactEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse artifact %s: %w", filename, err)
	}
	return &env, nil
}
