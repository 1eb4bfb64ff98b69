// Package protocol provides the deployment mode abstraction and the
// protocol-specific error formatters used by the tool dispatch layer.
package protocol

import (
	"fmt"
	"strings"
)

// DeploymentMode represents how the assistant is being run.
type DeploymentMode string

const (
	// ModeLocal represents direct in-process tool execution.
	ModeLocal DeploymentMode = "local"

	// ModeMCP represents the MCP streamable HTTP server.
	ModeMCP DeploymentMode = "mcp"

	// ModeBedrockAgent represents the Bedrock agent action-group Lambda.
	ModeBedrockAgent DeploymentMode = "bedrock-agent"
)

// String returns the string representation of the deployment mode.
func (m DeploymentMode) String() string {
	return string(m)
}

// ParseDeploymentMode parses a string into a deployment mode.
func ParseDeploymentMode(s string) (DeploymentMode, error) {
	switch strings.ToLower(s) {
	case "local":
		return ModeLocal, nil
	case "mcp":
		return ModeMCP, nil
	case "bedrock-agent", "bedrock_agent", "bedrockagent":
		return ModeBedrockAgent, nil
	default:
		return "", fmt.Errorf("unsupported deployment mode: %s", s)
	}
}
