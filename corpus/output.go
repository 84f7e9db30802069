package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

const (
	CompactFileName  = "conclude.json"
	ReadableFileName = "conclude_readable.json"
)

func encodeResults(results []*ExtractionResult, indent string) ([]byte, error) {
	if results == nil {
		results = []*ExtractionResult{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(results); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// WriteResults writes the indented and compact listings into dir, replacing
// any previous run. Both files are fully written to temporaries before
// either is renamed into place. The compact listing is renamed last, so if
// only one rename succeeds it is the compact one that is stale.
func WriteResults(dir string, results []*ExtractionResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating directory '%s' : %w", dir, err)
	}

	outputs := []struct {
		name   string
		indent string
	}{
		{ReadableFileName, "    "},
		{CompactFileName, ""},
	}

	temps := make([]string, 0, len(outputs))
	defer func() {
		for _, t := range temps {
			os.Remove(t)
		}
	}()

	for _, o := range outputs {
		data, err := encodeResults(results, o.indent)
		if err != nil {
			return err
		}
		tmp, err := writeTemp(dir, data)
		if err != nil {
			return err
		}
		temps = append(temps, tmp)
	}

	for i, o := range outputs {
		target := filepath.Join(dir, o.name)
		if err := os.Rename(temps[i], target); err != nil {
			if i > 0 {
				log.Printf("'%s' is from this run but '%s' is not, they are out of sync\n", outputs[0].name, o.name)
			}
			return fmt.Errorf("error replacing %s : %w", target, err)
		}
	}
	temps = nil
	return nil
}

func writeTemp(dir string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, ".conclude-*.tmp")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("error writing to file %s : %w", f.Name(), err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	if err := os.Chmod(f.Name(), 0o644); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
