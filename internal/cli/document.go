package cli

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/renalcare/internal/domain"
	"github.com/roach88/renalcare/internal/tracker"
)

// readDocument loads a scan from disk. The MIME type comes from the file
// extension, or from the content when the extension is unknown.
func readDocument(path string) (tracker.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tracker.Document{}, err
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = mt
	}
	return tracker.Document{FileName: filepath.Base(path), MimeType: mimeType, Data: data}, nil
}

// medEntry is one medication in a YAML medication list.
type medEntry struct {
	Name      string   `yaml:"name"`
	Dosage    string   `yaml:"dosage"`
	Frequency string   `yaml:"frequency"`
	Reminders []string `yaml:"reminders"`
}

// readMedList parses a YAML sequence of medications.
func readMedList(path string) ([]domain.Medication, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []medEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	meds := make([]domain.Medication, len(entries))
	for i, e := range entries {
		meds[i] = domain.Medication{Name: e.Name, Dosage: e.Dosage, Frequency: e.Frequency, Reminders: e.Reminders}
	}
	return meds, nil
}

func encodeData(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
