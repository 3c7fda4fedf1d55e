package utils

import (
	"encoding/json"
	"math"

	"github.com/invopop/jsonschema"
)

// GetSchemaFromConfig reflects a JSON schema from any config struct.
func GetSchemaFromConfig(config any) (string, error) {
	schema := jsonschema.Reflect(config)

	jsonSchemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}

// RoundToDecimalPrecision rounds a value down to the given number of decimal places.
// A precision of 0 rounds to whole shares.
func RoundToDecimalPrecision(value float64, precision int) float64 {
	if precision < 0 {
		return value
	}

	factor := math.Pow(10, float64(precision))

	return math.Floor(value*factor) / factor
}
