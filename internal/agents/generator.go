// Package agents implements the generation stages of the pipeline. Each
// agent owns its output schema and prompts, calls the model through the
// Generator interface, and fills exactly one slot (or slot group) of the
// game state. In dry-run mode every agent returns a deterministic fixture
// instead of calling the model.
package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/caseworks/mysteryforge/internal/gemini"
)

// Generator is the model surface the agents depend on.
type Generator interface {
	GenerateJSON(ctx context.Context, tier gemini.Tier, system, user string, schema map[string]interface{}) ([]byte, error)
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// invokeJSON calls the generator and decodes the structured response into
// out. A response that does not decode is a generator error: the stage
// fails, only validation loops retry.
func invokeJSON(ctx context.Context, gen Generator, tier gemini.Tier, system, user string, schema map[string]interface{}, out interface{}) error {
	raw, err := gen.GenerateJSON(ctx, tier, system, user, schema)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode model response: %w", err)
	}
	return nil
}

// mustJSON marshals a state slot for inclusion in a prompt.
func mustJSON(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
