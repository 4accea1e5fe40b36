package ai

import (
	"fmt"
	"strings"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/domain"
)

// ToolGoogleSearch grounds answers in live Google Search results.
const ToolGoogleSearch = "google-search"

// Tool describes a capability the model may use during a chat.
type Tool struct {
	ID          string
	Name        string
	Description string
	// declaration is the entry sent in the request's tools array.
	declaration map[string]any
}

var availableTools = []Tool{
	{
		ID:          ToolGoogleSearch,
		Name:        "Google Search",
		Description: "Access the latest information from the web using Google Search.",
		declaration: map[string]any{"google_search": map[string]any{}},
	},
}

// AvailableTools lists every tool that can be enabled.
func AvailableTools() []Tool {
	out := make([]Tool, len(availableTools))
	copy(out, availableTools)
	return out
}

// ToolSet is the immutable set of tools enabled for one chat session.
// The zero value enables nothing.
type ToolSet struct {
	tools []Tool
}

// NewToolSet enables the tools with the given IDs. Unknown IDs are an error.
func NewToolSet(ids ...string) (ToolSet, error) {
	var set ToolSet
	for _, id := range ids {
		tool, ok := lookupTool(id)
		if !ok {
			return ToolSet{}, fmt.Errorf("unknown tool: %s", id)
		}
		if set.Has(id) {
			continue
		}
		set.tools = append(set.tools, tool)
	}
	return set, nil
}

// ToolSetForMode returns the default tools for a conversation mode.
func ToolSetForMode(mode domain.Mode) ToolSet {
	if mode == domain.ModeTool {
		set, _ := NewToolSet(ToolGoogleSearch)
		return set
	}
	return ToolSet{}
}

// Has reports whether the tool with id is enabled.
func (s ToolSet) Has(id string) bool {
	for _, t := range s.tools {
		if t.ID == id {
			return true
		}
	}
	return false
}

// Tools returns a copy of the enabled tools.
func (s ToolSet) Tools() []Tool {
	out := make([]Tool, len(s.tools))
	copy(out, s.tools)
	return out
}

// Empty reports whether no tool is enabled.
func (s ToolSet) Empty() bool {
	return len(s.tools) == 0
}

// Names returns the enabled tools' display names joined by commas.
func (s ToolSet) Names() string {
	names := make([]string, len(s.tools))
	for i, t := range s.tools {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}

func (s ToolSet) declarations() []map[string]any {
	if len(s.tools) == 0 {
		return nil
	}
	out := make([]map[string]any, len(s.tools))
	for i, t := range s.tools {
		out[i] = t.declaration
	}
	return out
}

func lookupTool(id string) (Tool, bool) {
	for _, t := range availableTools {
		if t.ID == id {
			return t, true
		}
	}
	return Tool{}, false
}
