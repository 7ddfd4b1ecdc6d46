package service

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// mustJSONList marshals a string list into a JSON column value. Marshalling
// a []string cannot fail.
func mustJSONList(values []string) datatypes.JSON {
	raw, _ := json.Marshal(values)
	return datatypes.JSON(raw)
}
