package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
	"github.com/cognicore/cinegenre/pkg/cinegenre/model"
	"github.com/cognicore/cinegenre/pkg/cinegenre/vectorize"
)

// File names of the persisted champion pair.
const (
	VectorizerFile = "final_vectorizer.json"
	ModelFile      = "final_model.json"
)

// Champion is the selected estimator together with the vectorizer it was
// trained with
type Champion struct {
	Estimator  model.Estimator
	Vectorizer *vectorize.Vectorizer
	Variant    string
	Model      string
	Score      float64
	Classes    []string
	Capability model.Capability
	TrainedAt  time.Time
}

type modelDoc struct {
	Variant   string          `json:"variant"`
	Model     string          `json:"model"`
	Score     float64         `json:"score"`
	Classes   []string        `json:"classes"`
	TrainedAt time.Time       `json:"trained_at"`
	Estimator json.RawMessage `json:"estimator"`

	// VectorizerSum is the hex SHA-256 of the vectorizer file saved with
	// this model. Empty in files written before the field existed.
	VectorizerSum string `json:"vectorizer_sha256,omitempty"`
}

// Save writes the vectorizer and model files into dir. Both files are staged
// first and then renamed into place. If installing the model fails, the
// previous vectorizer is restored. The model file records a checksum of its
// vectorizer, so Load rejects a pair left mixed by a crash between renames.
func Save(dir string, c *Champion) error {
	if c == nil || c.Estimator == nil || c.Vectorizer == nil {
		return fmt.Errorf("%w: incomplete champion", internalerr.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}

	vecData, err := json.Marshal(c.Vectorizer)
	if err != nil {
		return fmt.Errorf("encode vectorizer: %w", err)
	}
	estData, err := model.Marshal(c.Estimator)
	if err != nil {
		return err
	}
	modelData, err := json.Marshal(modelDoc{
		Variant:       c.Variant,
		Model:         c.Model,
		Score:         c.Score,
		Classes:       c.Estimator.Classes(),
		TrainedAt:     c.TrainedAt,
		Estimator:     estData,
		VectorizerSum: checksum(vecData),
	})
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}

	vecTmp, err := stage(dir, VectorizerFile, vecData)
	if err != nil {
		return err
	}
	modelTmp, err := stage(dir, ModelFile, modelData)
	if err != nil {
		os.Remove(vecTmp)
		return err
	}

	vecPath := filepath.Join(dir, VectorizerFile)
	backup := ""
	if _, err := os.Stat(vecPath); err == nil {
		backup = vecPath + ".bak"
		if err := os.Rename(vecPath, backup); err != nil {
			os.Remove(vecTmp)
			os.Remove(modelTmp)
			return fmt.Errorf("back up vectorizer: %w", err)
		}
	}
	restore := func() {
		if backup != "" {
			os.Rename(backup, vecPath)
		} else {
			os.Remove(vecPath)
		}
	}

	if err := os.Rename(vecTmp, vecPath); err != nil {
		os.Remove(vecTmp)
		os.Remove(modelTmp)
		restore()
		return fmt.Errorf("install vectorizer: %w", err)
	}
	if err := os.Rename(modelTmp, filepath.Join(dir, ModelFile)); err != nil {
		os.Remove(modelTmp)
		restore()
		return fmt.Errorf("install model: %w", err)
	}
	if backup != "" {
		os.Remove(backup)
	}
	return nil
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func stage(dir, name string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, "."+name+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	return tmp, nil
}

// Load reads the champion pair from dir and resolves its capability. A
// missing file or a vectorizer saved with a different model yields
// internalerr.ErrModelUnavailable.
func Load(dir string) (*Champion, error) {
	vecData, err := readFile(dir, VectorizerFile)
	if err != nil {
		return nil, err
	}
	modelData, err := readFile(dir, ModelFile)
	if err != nil {
		return nil, err
	}

	var doc modelDoc
	if err := json.Unmarshal(modelData, &doc); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if doc.VectorizerSum != "" && doc.VectorizerSum != checksum(vecData) {
		return nil, fmt.Errorf("%w: %s does not belong to %s in %s",
			internalerr.ErrModelUnavailable, VectorizerFile, ModelFile, dir)
	}

	var vec vectorize.Vectorizer
	if err := json.Unmarshal(vecData, &vec); err != nil {
		return nil, fmt.Errorf("decode vectorizer: %w", err)
	}
	est, err := model.Unmarshal(doc.Estimator)
	if err != nil {
		return nil, err
	}

	return &Champion{
		Estimator:  est,
		Vectorizer: &vec,
		Variant:    doc.Variant,
		Model:      doc.Model,
		Score:      doc.Score,
		Classes:    est.Classes(),
		Capability: model.CapabilityOf(est),
		TrainedAt:  doc.TrainedAt,
	}, nil
}

// Exists reports whether both artifact files are present in dir.
func Exists(dir string) bool {
	for _, name := range []string{VectorizerFile, ModelFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return false
		}
	}
	return true
}

func readFile(dir, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s not found in %s", internalerr.ErrModelUnavailable, name, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}
