package platform

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/harvestapi/prospector/types"
)

// LoadInput reads the run input JSON from the given path.
// Schema validation happens upstream on the host platform; this only
// checks that the file exists and parses.
func LoadInput(path string) (types.RawInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.RawInput{}, fmt.Errorf("input file not found: %s", path)
		}
		return types.RawInput{}, fmt.Errorf("cannot read input file %q: %w", path, err)
	}

	var input types.RawInput
	if err := json.Unmarshal(data, &input); err != nil {
		return types.RawInput{}, fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	return input, nil
}
