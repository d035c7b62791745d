package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "job":
		return jobTemplate, nil
	case "local":
		return localTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

// jobTemplate runs under the engine: stdin in, job descriptors out.
const jobTemplate = `track_indices = true
buffer_size = 65536
input_table_count = 1
output_table_count = 2
log_level = "info"
`

// localTemplate replays a captured input file into local output files.
const localTemplate = `track_indices = false
input_table_count = 1
output_table_count = 2
compression = "zstd"
input = "input.skiff.zst"
outputs = ["tagged.skiff.zst", "untagged.skiff.zst"]
log_level = "debug"
metrics_path = "skiffjob.prom"
`
