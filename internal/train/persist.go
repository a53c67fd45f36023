package train

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// CategoryModel pairs a fitted classifier with the scaler its features
// were standardized by. The two are only meaningful together.
type CategoryModel struct {
	Forest *Forest
	Scaler *Scaler
}

func modelPath(dir, category string) string {
	return filepath.Join(dir, category+"_model.gob")
}

func scalerPath(dir, category string) string {
	return filepath.Join(dir, category+"_scaler.gob")
}

// saveModel persists the model/scaler pair as two gob files keyed by
// category name.
func saveModel(dir, category string, m *CategoryModel) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	if err := writeGob(modelPath(dir, category), m.Forest); err != nil {
		return fmt.Errorf("save %s model: %w", category, err)
	}
	if err := writeGob(scalerPath(dir, category), m.Scaler); err != nil {
		return fmt.Errorf("save %s scaler: %w", category, err)
	}
	return nil
}

// loadModel reads a cached pair. Both files must exist and decode, else
// the category is treated as untrained.
func loadModel(dir, category string) (*CategoryModel, error) {
	m := &CategoryModel{Forest: &Forest{}, Scaler: &Scaler{}}
	if err := readGob(modelPath(dir, category), m.Forest); err != nil {
		return nil, fmt.Errorf("load %s model: %w", category, err)
	}
	if err := readGob(scalerPath(dir, category), m.Scaler); err != nil {
		return nil, fmt.Errorf("load %s scaler: %w", category, err)
	}
	return m, nil
}

func writeGob(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readGob(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewDecoder(f).Decode(v)
}
