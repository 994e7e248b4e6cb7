// Package prompts loads the text the assistant shows to the model and the user.
// Defaults are embedded; a directory may override individual keys.
package prompts

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	AgentFile = "agent_prompts.json"
	ToolFile  = "tool_prompts.json"
)

//go:embed agent_prompts.json
var defaultAgent []byte

//go:embed tool_prompts.json
var defaultTools []byte

// Set is the resolved prompt text.
type Set struct {
	SystemPrompt     string `json:"system_prompt"`
	WelcomeMessage   string `json:"welcome_message"`
	ErrorMessage     string `json:"error_message"`
	ExhaustedMessage string `json:"exhausted_message"`

	UFDescription         string `json:"uf_description"`
	MunicipioDescription  string `json:"municipio_description"`
	ModalidadeDescription string `json:"modalidade_description"`
	PNCPDescription       string `json:"pncp_description"`
	PNCPUsage             string `json:"pncp_usage"`
}

// Default returns the embedded prompts.
func Default() *Set {
	s := &Set{}
	// Embedded files are validated by tests.
	_ = json.Unmarshal(defaultAgent, s)
	_ = json.Unmarshal(defaultTools, s)
	return s
}

// Load returns the embedded prompts with keys from dir layered on top.
// A missing file in dir is not an error; a malformed one is.
func Load(dir string) (*Set, error) {
	s := Default()
	if strings.TrimSpace(dir) == "" {
		return s, nil
	}
	for _, name := range []string{AgentFile, ToolFile} {
		if err := overlay(s, filepath.Join(dir, name)); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// overlay decodes path into a map first so absent or empty keys keep their defaults.
func overlay(s *Set, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read prompts %s: %w", path, err)
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode prompts %s: %w", path, err)
	}
	for k, v := range raw {
		if v == "" {
			delete(raw, k)
		}
	}
	filtered, _ := json.Marshal(raw)
	if err := json.Unmarshal(filtered, s); err != nil {
		return fmt.Errorf("apply prompts %s: %w", path, err)
	}
	return nil
}

// PNCPToolDescription joins the search tool description with its usage rules.
func (s *Set) PNCPToolDescription() string {
	if s.PNCPUsage == "" {
		return s.PNCPDescription
	}
	return s.PNCPDescription + " " + s.PNCPUsage
}
