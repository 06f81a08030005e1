package pretty

import (
	"encoding/json"
	"fmt"
)

// Object renders a value as indented JSON for debug logging. Falls back to
// fmt formatting for values JSON can't represent.
func Object(o interface{}) string {
	b, err := json.MarshalIndent(o, "", "\t")
	if err != nil {
		return fmt.Sprint(o)
	}
	return string(b)
}
