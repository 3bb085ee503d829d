package database

import (
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Decode maps the fields of doc onto out, which must be a pointer to a struct tagged with
// `firestore` keys. Numeric fields are converted (Firestore returns whole numbers as int64)
// and RFC 3339 strings are accepted for time fields. Unknown fields are ignored.
func Decode(doc Document, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "firestore",
		WeaklyTypedInput: true,
		Result:           out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := decoder.Decode(doc.Data); err != nil {
		return fmt.Errorf("decode document %q: %w", doc.ID, err)
	}
	return nil
}
