package output

import (
	"encoding/json"
	"fmt"
)

// JSONFormatter renders the state as indented JSON.
type JSONFormatter struct{}

// Format serializes the state as pretty-printed JSON.
func (f *JSONFormatter) Format(result *StateOutput) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("json formatter: state is required")
	}
	return json.MarshalIndent(result.State, "", "  ")
}
