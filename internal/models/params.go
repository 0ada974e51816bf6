package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// CallParams is the parsed form of the paramsOverride / paramsUsed blobs.
// Fields are pointers so a missing key can be told apart from an empty value;
// the gallery projection falls back to table columns only for missing keys.
type CallParams struct {
	Prompt        *string  `json:"prompt"`
	Size          *string  `json:"size"`
	Model         *string  `json:"model"`
	ModelIDs      []string `json:"modelIds"`
	HasImageInput *bool    `json:"hasImageInput"`
	ImageInputURL *string  `json:"imageInputUrl"`
}

// ParseCallParams parses a serialized params blob. Malformed input (including
// the truncated tail a ParamsUsed blob may carry) yields nil, never an error.
func ParseCallParams(raw string) *CallParams {
	if raw == "" {
		return nil
	}
	var p CallParams
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil
	}
	return &p
}

// StringList decodes a JSON column holding a string array. Returns nil for
// empty, malformed, or non-array input.
func StringList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// JSONObject decodes a JSON column holding an object. Returns nil for empty,
// malformed, or non-object input.
func JSONObject(raw datatypes.JSON) map[string]interface{} {
	if len(raw) == 0 {
		return nil
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// MustJSON marshals v into a JSON column value. Marshal failures collapse to
// JSON null, matching the degrade-to-defaults policy of the parsers above.
func MustJSON(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(b)
}
