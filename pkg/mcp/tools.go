package mcp

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dustin/go-humanize"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/trace"

	"github.com/hunomina/sort/pkg/budget"
	"github.com/hunomina/sort/pkg/config"
	"github.com/hunomina/sort/pkg/extsort"
	"github.com/hunomina/sort/pkg/observability"
)

// Tool name constants.
const (
	ToolNameSort = "kwaysort_sort"
	ToolNamePlan = "kwaysort_plan"
)

// Input size limits.
const (
	// MaxInputElements bounds the sequence a single tool call may sort.
	MaxInputElements = 1_000_000
	// MaxTracedElements bounds the sequence for which every pass is returned.
	MaxTracedElements = 10_000
	// MaxFanIn bounds fan_in. A fan-in above the element count already sorts
	// in a single pass.
	MaxFanIn = MaxInputElements
)

// Sentinel errors for tool input validation.
var (
	// ErrAmbiguousInput indicates both values and strings were given.
	ErrAmbiguousInput = errors.New("pass either values or strings, not both")
	// ErrTooManyElements indicates the input exceeds MaxInputElements.
	ErrTooManyElements = errors.New("input exceeds maximum element count")
	// ErrTraceTooLarge indicates trace_passes was requested for a large input.
	ErrTraceTooLarge = errors.New("trace_passes input exceeds maximum element count")
	// ErrFanInTooLarge indicates fan_in exceeds MaxFanIn.
	ErrFanInTooLarge = errors.New("fan_in exceeds maximum")
	// ErrNegativeCount indicates a negative element count.
	ErrNegativeCount = errors.New("elements must not be negative")
)

// SortInput is the input schema for the kwaysort_sort tool.
type SortInput struct {
	Values      []float64 `json:"values,omitempty"       jsonschema:"numbers to sort"`
	Strings     []string  `json:"strings,omitempty"      jsonschema:"strings to sort, compared bytewise"`
	FanIn       int       `json:"fan_in,omitempty"       jsonschema:"merge fan-in k (default 2)"`
	PageSize    int       `json:"page_size,omitempty"    jsonschema:"maximum elements per page (default 1024)"`
	Strategy    string    `json:"strategy,omitempty"     jsonschema:"head selection: scan or heap (default heap)"`
	TracePasses bool      `json:"trace_passes,omitempty" jsonschema:"also return the sequence as it stood after every pass"`
}

// PlanInput is the input schema for the kwaysort_plan tool.
type PlanInput struct {
	Elements     int    `json:"elements"                jsonschema:"number of elements to sort"`
	FanIn        int    `json:"fan_in,omitempty"        jsonschema:"merge fan-in k (default 2)"`
	PageSize     int    `json:"page_size,omitempty"     jsonschema:"maximum elements per page (default 1024)"`
	MemoryBudget string `json:"memory_budget,omitempty" jsonschema:"memory for the pages of the first pass (e.g. 64MiB); overrides page_size"`
	ElementSize  int    `json:"element_size,omitempty"  jsonschema:"bytes per element used with memory_budget (default 8)"`
}

// SortResult is the data returned by kwaysort_sort.
type SortResult[T any] struct {
	Sorted []T           `json:"sorted"`
	Stats  extsort.Stats `json:"stats"`
	Passes [][]T         `json:"passes,omitempty"`
}

// PlanResult is the data returned by kwaysort_plan.
type PlanResult struct {
	Elements    int                   `json:"elements"`
	FanIn       int                   `json:"fan_in"`
	PageSize    int                   `json:"page_size"`
	Passes      []extsort.PlannedPass `json:"passes"`
	BufferBytes int64                 `json:"buffer_bytes"`
	BufferSize  string                `json:"buffer_size"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// sortRunner carries the ambient dependencies handed to every Sorter.
type sortRunner struct {
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *observability.SortMetrics
}

func (r sortRunner) handleSort(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input SortInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateSortInput(input)
	if err != nil {
		return errorResult(err)
	}

	if len(input.Strings) > 0 {
		result, sortErr := runSort(ctx, r, input, input.Strings, cmp.Compare[string])
		if sortErr != nil {
			return errorResult(sortErr)
		}

		return jsonResult(result)
	}

	result, err := runSort(ctx, r, input, input.Values, cmp.Compare[float64])
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(result)
}

func validateSortInput(input SortInput) error {
	if len(input.Values) > 0 && len(input.Strings) > 0 {
		return ErrAmbiguousInput
	}

	if input.FanIn > MaxFanIn {
		return fmt.Errorf("%w: %d (max %d)", ErrFanInTooLarge, input.FanIn, MaxFanIn)
	}

	n := max(len(input.Values), len(input.Strings))

	if n > MaxInputElements {
		return fmt.Errorf("%w: %d (max %d)", ErrTooManyElements, n, MaxInputElements)
	}

	if input.TracePasses && n > MaxTracedElements {
		return fmt.Errorf("%w: %d (max %d)", ErrTraceTooLarge, n, MaxTracedElements)
	}

	return nil
}

func runSort[T any](
	ctx context.Context, r sortRunner, input SortInput, values []T, compare func(a, b T) int,
) (SortResult[T], error) {
	var (
		observers extsort.Observers[T]
		passes    [][]T
	)

	if r.metrics != nil {
		observers = append(observers, observability.NewSortObserver[T](r.metrics))
	}

	if input.TracePasses {
		observers = append(observers, extsort.ObserverFuncs[T]{
			Pass: func(_ context.Context, _ extsort.PassStats, seq []T) error {
				passes = append(passes, slices.Clone(seq))

				return nil
			},
		})
	}

	sorter, err := extsort.New(extsort.Config[T]{
		FanIn:    cmp.Or(input.FanIn, config.DefaultFanIn),
		PageSize: cmp.Or(input.PageSize, config.DefaultPageSize),
		Compare:  compare,
		Strategy: extsort.Strategy(input.Strategy),
		Observer: observers,
		Logger:   r.logger,
		Tracer:   r.tracer,
	})
	if err != nil {
		return SortResult[T]{}, err
	}

	sorted, stats, err := sorter.Sort(ctx, values)
	if err != nil {
		return SortResult[T]{}, err
	}

	if sorted == nil {
		sorted = []T{}
	}

	return SortResult[T]{Sorted: sorted, Stats: stats, Passes: passes}, nil
}

func handlePlan(_ context.Context, _ *mcpsdk.CallToolRequest, input PlanInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	result, err := plan(input)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(result)
}

func plan(input PlanInput) (PlanResult, error) {
	if input.Elements < 0 {
		return PlanResult{}, fmt.Errorf("%w: %d", ErrNegativeCount, input.Elements)
	}

	sortCfg := config.SortConfig{
		FanIn:        cmp.Or(input.FanIn, config.DefaultFanIn),
		PageSize:     cmp.Or(input.PageSize, config.DefaultPageSize),
		MemoryBudget: input.MemoryBudget,
		ElementSize:  cmp.Or(input.ElementSize, config.DefaultElementSize),
	}

	budgetBytes, err := sortCfg.MemoryBudgetBytes()
	if err != nil {
		return PlanResult{}, err
	}

	pageSize, err := budget.ResolvePageSize(sortCfg.PageSize, budgetBytes, sortCfg.ElementSize, sortCfg.FanIn)
	if err != nil {
		return PlanResult{}, err
	}

	passes, err := extsort.Plan(sortCfg.FanIn, pageSize, input.Elements)
	if err != nil {
		return PlanResult{}, err
	}

	if passes == nil {
		passes = []extsort.PlannedPass{}
	}

	buffers := budget.EstimateMemoryUsage(input.Elements, sortCfg.ElementSize)

	return PlanResult{
		Elements:    input.Elements,
		FanIn:       sortCfg.FanIn,
		PageSize:    pageSize,
		Passes:      passes,
		BufferBytes: buffers,
		BufferSize:  humanize.IBytes(uint64(buffers)),
	}, nil
}
