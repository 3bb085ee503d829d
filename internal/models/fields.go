package models

func setString(fields map[string]interface{}, key string, value *string) {
	if value != nil {
		fields[key] = *value
	}
}

func setFloat(fields map[string]interface{}, key string, value *float64) {
	if value != nil {
		fields[key] = *value
	}
}

// stringsToValues mirrors the []interface{} shape Firestore returns for arrays, so that
// every store holds the same representation.
func stringsToValues(values []string) []interface{} {
	out := make([]interface{}, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
