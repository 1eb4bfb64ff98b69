// Package dispatch routes tool calls through validation, resilience, and
// protocol-specific error formatting. It is the single execution path shared
// by every deployment mode.
package dispatch

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/errors"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/logger"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/protocol"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/resilience"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/telemetry"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/tools"
)

// Result is a successful tool dispatch.
type Result struct {
	// RequestID correlates log lines and responses for one dispatch.
	RequestID string

	// Value is the tool output.
	Value any

	// Source reports which mechanism produced Value.
	Source resilience.Source

	// Attempts is the number of primary invocations made.
	Attempts int
}

// Manager executes tool calls: it resolves the tool, validates arguments
// against the tool's input schema, runs the handler through the fallback
// chain, and formats failures for the active protocol.
type Manager struct {
	registry   *tools.Registry
	resilience *resilience.Manager
	formatter  protocol.Formatter
	metrics    *telemetry.Metrics
}

// NewManager wires a dispatch manager for the given deployment mode.
// The metrics argument may be nil to disable instrumentation.
func NewManager(
	registry *tools.Registry,
	res *resilience.Manager,
	mode protocol.DeploymentMode,
	metrics *telemetry.Metrics,
) *Manager {
	return &Manager{
		registry:   registry,
		resilience: res,
		formatter:  protocol.ForMode(mode),
		metrics:    metrics,
	}
}

// Mode returns the deployment mode this manager formats errors for.
func (m *Manager) Mode() protocol.DeploymentMode {
	return m.formatter.Mode()
}

// Tools lists the registered tools sorted by name.
func (m *Manager) Tools() []*tools.Tool {
	return m.registry.List()
}

// Dispatch runs one tool call end to end.
func (m *Manager) Dispatch(ctx context.Context, toolName string, args map[string]any) (*Result, error) {
	requestID := uuid.NewString()
	start := time.Now()

	if m.metrics != nil {
		done := m.metrics.CallStarted()
		defer done()
	}

	result, err := m.dispatch(ctx, requestID, toolName, args)

	if m.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		m.metrics.RecordExecution(toolName, status, time.Since(start))
		if err == nil && result.Source != resilience.SourcePrimary {
			m.metrics.RecordFallback(toolName, string(result.Source))
		}
	}

	if err != nil {
		logger.Warnf("Tool %s failed (request %s): %v", toolName, requestID, err)
		return nil, err
	}

	logger.Debugf("Tool %s served from %s in %s (request %s)",
		toolName, result.Source, time.Since(start).Round(time.Millisecond), requestID)
	return result, nil
}

func (m *Manager) dispatch(ctx context.Context, requestID, toolName string, args map[string]any) (*Result, error) {
	tool, err := m.registry.Get(toolName)
	if err != nil {
		if stderrors.Is(err, tools.ErrToolNotFound) {
			return nil, errors.NewNotFoundError(fmt.Sprintf("unknown tool %s", toolName), err)
		}
		return nil, errors.NewInternalError("tool lookup failed", err)
	}

	if err := validateArgs(tool, args); err != nil {
		return nil, err
	}

	outcome, err := m.resilience.Execute(ctx, toolName, args,
		func(ctx context.Context) (any, error) { return tool.Handler(ctx, args) },
		m.alternativeFor(tool, args))
	if err != nil {
		return nil, err
	}

	return &Result{
		RequestID: requestID,
		Value:     outcome.Value,
		Source:    outcome.Source,
		Attempts:  outcome.Attempts,
	}, nil
}

// FormatError renders err in the payload shape of the active protocol.
func (m *Manager) FormatError(err error) map[string]any {
	return m.formatter.FormatError(err)
}

// alternativeFor resolves the tool's registered alternative into an
// operation. Missing or self-referential alternatives yield nil.
func (m *Manager) alternativeFor(tool *tools.Tool, args map[string]any) resilience.Operation {
	if tool.Alternative == "" || tool.Alternative == tool.Name {
		return nil
	}

	alt, err := m.registry.Get(tool.Alternative)
	if err != nil {
		logger.Warnf("Tool %s names unregistered alternative %s", tool.Name, tool.Alternative)
		return nil
	}

	return func(ctx context.Context) (any, error) {
		return alt.Handler(ctx, args)
	}
}

// validateArgs checks args against the tool's JSON schema. Tools without a
// schema accept any arguments.
func validateArgs(tool *tools.Tool, args map[string]any) error {
	if len(tool.InputSchema) == 0 {
		return nil
	}
	if args == nil {
		args = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(tool.InputSchema)
	documentLoader := gojsonschema.NewGoLoader(args)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return errors.NewInternalError(fmt.Sprintf("schema for tool %s is invalid", tool.Name), err)
	}
	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		details = append(details, resultErr.String())
	}
	return errors.NewValidationError(
		fmt.Sprintf("invalid arguments for tool %s: %s", tool.Name, strings.Join(details, "; ")), nil)
}
