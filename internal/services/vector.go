package services

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
)

func encodeVector(vec []float32) datatypes.JSON {
	raw, _ := json.Marshal(vec)
	return datatypes.JSON(raw)
}

func decodeVector(raw datatypes.JSON) ([]float32, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty vector payload")
	}
	var vec []float32
	if err := json.Unmarshal(raw, &vec); err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("zero-length vector")
	}
	return vec, nil
}
