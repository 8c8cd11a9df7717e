package track

import (
	"encoding/json"
	"os"
	"time"

	"RegimeSentinel/internal/model"
)

// LoadState reads the track state from a JSON file. Returns a zero state if the file doesn't exist.
func LoadState(filePath string) (*model.TrackState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.TrackState{}, nil
		}
		return nil, err
	}
	var state model.TrackState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveState writes the track state to a JSON file.
func SaveState(filePath string, state *model.TrackState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
