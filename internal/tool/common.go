package tool

import (
	"encoding/json"
	"fmt"
)

// unmarshalArgs decodes the generic argument map of a tool call into the
// tool's typed request. Unknown keys are ignored; type mismatches report
// ErrInvalidInput.
func unmarshalArgs(args map[string]any, out any) error {
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return nil
}
