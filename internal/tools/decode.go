package tools

import (
	"github.com/mitchellh/mapstructure"
)

// Args are validated tool arguments keyed by parameter name.
type Args map[string]any

// Decode copies args into the struct pointed to by out, matching json tags.
func Decode(args Args, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any(args))
}
