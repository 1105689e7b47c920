package opa

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/bawdo/ksqltree/nodes"
	"github.com/bawdo/ksqltree/plugins"
	"github.com/bawdo/ksqltree/visitors"
)

// ErrAccessDenied is returned when partial evaluation leaves no query that
// could satisfy the policy for a source.
var ErrAccessDenied = errors.New("opa: access denied")

// Client communicates with an OPA server's Compile and Data APIs.
type Client struct {
	baseURL    string
	policyPath string
	input      map[string]any
	httpClient *http.Client
}

// NewClient creates a Client. The policy path is normalized to carry the
// "data." prefix.
//
// The baseURL is used as-is; use HTTPS outside local development so that
// policy input is not sent in plain text.
func NewClient(baseURL, policyPath string, input map[string]any) *Client {
	if !strings.HasPrefix(policyPath, "data.") {
		policyPath = "data." + policyPath
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		policyPath: policyPath,
		input:      input,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// PolicyPath returns the normalized policy path.
func (c *Client) PolicyPath() string { return c.policyPath }

// postJSON posts body to path and returns the response body, failing on
// any status other than 200.
func (c *Client) postJSON(path string, body any) (req, resp []byte, err error) {
	req, err = json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("opa: marshal request: %w", err)
	}
	r, err := c.httpClient.Post(c.baseURL+path, "application/json", bytes.NewReader(req))
	if err != nil {
		return req, nil, err
	}
	defer func() { _ = r.Body.Close() }()

	resp, err = io.ReadAll(r.Body)
	if err != nil {
		return req, nil, err
	}
	if r.StatusCode != http.StatusOK {
		return req, nil, fmt.Errorf("status %d: %s", r.StatusCode, strings.TrimSpace(string(resp)))
	}
	return req, resp, nil
}

// --- Compile API ---

type compileRequest struct {
	Query    string   `json:"query"`
	Input    any      `json:"input,omitempty"`
	Unknowns []string `json:"unknowns"`
}

type compileResponse struct {
	Result struct {
		Queries [][]compileExpression `json:"queries"`
	} `json:"result"`
}

type compileExpression struct {
	Index int           `json:"index"`
	Terms []compileTerm `json:"terms"`
}

type compileTerm struct {
	Type  string
	Value any // string, int, float64, bool or []compileTerm for a ref
}

// UnmarshalJSON decodes Value according to Type.
func (ct *compileTerm) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ct.Type = raw.Type

	switch raw.Type {
	case "string", "var":
		var s string
		if err := json.Unmarshal(raw.Value, &s); err != nil {
			return fmt.Errorf("opa: %s term: %w", raw.Type, err)
		}
		ct.Value = s
	case "number":
		var f float64
		if err := json.Unmarshal(raw.Value, &f); err != nil {
			return fmt.Errorf("opa: number term: %w", err)
		}
		if f == math.Trunc(f) && !math.IsInf(f, 0) {
			ct.Value = int(f)
		} else {
			ct.Value = f
		}
	case "boolean":
		var b bool
		if err := json.Unmarshal(raw.Value, &b); err != nil {
			return fmt.Errorf("opa: boolean term: %w", err)
		}
		ct.Value = b
	case "ref":
		var terms []compileTerm
		if err := json.Unmarshal(raw.Value, &terms); err != nil {
			return fmt.Errorf("opa: ref term: %w", err)
		}
		ct.Value = terms
	default:
		return fmt.Errorf("opa: unknown term type %q", raw.Type)
	}
	return nil
}

func parseCompileResponse(data []byte) (*compileResponse, error) {
	var resp compileResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("opa: parse compile response: %w", err)
	}
	return &resp, nil
}

// refParts returns the elements of a ref term whose head is the var root.
func refParts(term compileTerm, root string) ([]compileTerm, bool) {
	if term.Type != "ref" {
		return nil, false
	}
	parts, ok := term.Value.([]compileTerm)
	if !ok || len(parts) == 0 || parts[0].Type != "var" {
		return nil, false
	}
	name, _ := parts[0].Value.(string)
	return parts, root == "" || name == root
}

func extractOperator(term compileTerm) (string, error) {
	parts, ok := refParts(term, "")
	if !ok {
		return "", fmt.Errorf("opa: operator term must be a ref to a var, got %s", term.Type)
	}
	return parts[0].Value.(string), nil
}

// extractColumnName returns the last string element of a data ref.
func extractColumnName(term compileTerm) (string, error) {
	parts, ok := refParts(term, "data")
	if !ok {
		return "", errors.New("opa: column term is not a data ref")
	}
	for i := len(parts) - 1; i > 0; i-- {
		if s, ok := parts[i].Value.(string); ok && parts[i].Type == "string" {
			return s, nil
		}
	}
	return "", errors.New("opa: column ref has no string element")
}

func isDataRef(term compileTerm) bool {
	_, ok := refParts(term, "data")
	return ok
}

var comparisonOps = map[string]nodes.ComparisonOp{
	"eq":    nodes.OpEqual,
	"equal": nodes.OpEqual,
	"neq":   nodes.OpNotEqual,
	"lt":    nodes.OpLessThan,
	"lte":   nodes.OpLessThanOrEqual,
	"gt":    nodes.OpGreaterThan,
	"gte":   nodes.OpGreaterThanOrEqual,
}

// literal converts a decoded scalar term value into a literal node.
func literal(v any) (nodes.Expression, error) {
	switch v := v.(type) {
	case string:
		return nodes.NewStringLiteral(v), nil
	case int:
		return nodes.NewIntegerLiteral(int64(v)), nil
	case float64:
		return nodes.NewDoubleLiteral(v), nil
	case bool:
		return nodes.NewBooleanLiteral(v), nil
	default:
		return nil, fmt.Errorf("opa: unsupported value term %T", v)
	}
}

// operands picks the data ref and the value term of a comparison. OPA
// does not guarantee operand order.
func operands(expr compileExpression) (col, val compileTerm, err error) {
	if len(expr.Terms) < 3 {
		return col, val, fmt.Errorf("opa: expression has %d terms, need at least 3", len(expr.Terms))
	}
	switch {
	case isDataRef(expr.Terms[1]):
		return expr.Terms[1], expr.Terms[2], nil
	case isDataRef(expr.Terms[2]):
		return expr.Terms[2], expr.Terms[1], nil
	}
	return col, val, errors.New("opa: expression has no data ref term")
}

// translateExpression converts one residual expression into a comparison
// on a column qualified by qualifier. Column names are upper-cased to
// follow ksqlDB's folding of unquoted identifiers.
func translateExpression(expr compileExpression, qualifier nodes.QualifiedName) (nodes.Expression, error) {
	colTerm, valTerm, err := operands(expr)
	if err != nil {
		return nil, err
	}
	op, err := extractOperator(expr.Terms[0])
	if err != nil {
		return nil, err
	}
	cmp, ok := comparisonOps[op]
	if !ok {
		return nil, fmt.Errorf("opa: unsupported operator %q", op)
	}
	colName, err := extractColumnName(colTerm)
	if err != nil {
		return nil, err
	}
	name, err := nodes.NewQualifiedName(append(qualifier.Parts(), strings.ToUpper(colName))...)
	if err != nil {
		return nil, fmt.Errorf("opa: %w", err)
	}
	col, err := nodes.NewColumnReference(name)
	if err != nil {
		return nil, err
	}
	val, err := literal(valTerm.Value)
	if err != nil {
		return nil, err
	}
	cond, err := nodes.NewComparisonExpression(cmp, col, val)
	if err != nil {
		return nil, err
	}
	return cond, nil
}

// translateQueries converts a residual query set into WHERE conditions.
//
//   - no queries: access denied
//   - one empty query, or any empty query among several: unconditional allow
//   - one query: each expression is its own condition
//   - several queries: expressions AND'd within a query, queries OR'd together
func translateQueries(queries [][]compileExpression, qualifier nodes.QualifiedName) ([]nodes.Expression, error) {
	if len(queries) == 0 {
		return nil, ErrAccessDenied
	}
	if len(queries) == 1 {
		conditions := make([]nodes.Expression, 0, len(queries[0]))
		for _, expr := range queries[0] {
			cond, err := translateExpression(expr, qualifier)
			if err != nil {
				return nil, err
			}
			conditions = append(conditions, cond)
		}
		return conditions, nil
	}

	var result nodes.Expression
	for _, query := range queries {
		if len(query) == 0 {
			return nil, nil
		}
		var group nodes.Expression
		for _, expr := range query {
			cond, err := translateExpression(expr, qualifier)
			if err != nil {
				return nil, err
			}
			if group, err = combine(nodes.OpAnd, group, cond); err != nil {
				return nil, err
			}
		}
		var err error
		if result, err = combine(nodes.OpOr, result, group); err != nil {
			return nil, err
		}
	}
	return []nodes.Expression{result}, nil
}

func combine(op nodes.LogicalOp, left, right nodes.Expression) (nodes.Expression, error) {
	if left == nil {
		return right, nil
	}
	return nodes.NewLogicalBinaryExpression(op, left, right)
}

func (c *Client) compile(ref plugins.SourceRef) (req, resp []byte, parsed *compileResponse, err error) {
	req, resp, err = c.postJSON("/v1/compile", compileRequest{
		Query:    c.policyPath + " == true",
		Input:    c.input,
		Unknowns: []string{dataUnknown(ref.Name)},
	})
	if err != nil {
		return req, nil, nil, fmt.Errorf("opa: compile request failed: %w", err)
	}
	parsed, err = parseCompileResponse(resp)
	return req, resp, parsed, err
}

// dataUnknown names the data document standing for a source. Rego
// documents are conventionally lower case.
func dataUnknown(name nodes.QualifiedName) string {
	return "data." + strings.ToLower(name.String())
}

// Compile partially evaluates the policy with the source as unknown and
// returns the residual conditions, qualified by ref.Qualifier.
func (c *Client) Compile(ref plugins.SourceRef) ([]nodes.Expression, error) {
	_, _, parsed, err := c.compile(ref)
	if err != nil {
		return nil, err
	}
	conditions, err := translateQueries(parsed.Result.Queries, ref.Qualifier)
	if errors.Is(err, ErrAccessDenied) {
		return nil, fmt.Errorf("%w to %s", err, ref.Name)
	}
	return conditions, err
}

// --- Data API: masks ---

// MaskAction describes how to mask a single column.
type MaskAction struct {
	Replace *ReplaceAction `json:"replace"`
}

// ReplaceAction replaces the column value with a literal string.
type ReplaceAction struct {
	Value string `json:"value"`
}

// Masks maps an upper-cased source name to its masked columns, keyed by
// upper-cased column name.
type Masks map[string]map[string]MaskAction

// For returns the masks of source, matched case-insensitively.
func (m Masks) For(source string) map[string]MaskAction {
	return m[strings.ToUpper(source)]
}

// masksDataPath returns the Data API path of the "masks" rule that sits
// next to the policy rule: data.ksql.orders.allow reads ksql/orders/masks.
func (c *Client) masksDataPath() string {
	path := strings.TrimPrefix(c.policyPath, "data.")
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return "masks"
	}
	return strings.ReplaceAll(path[:idx], ".", "/") + "/masks"
}

// FetchMasks evaluates the masks rule. It returns nil when the rule is
// undefined or masks nothing.
func (c *Client) FetchMasks() (Masks, error) {
	type dataRequest struct {
		Input any `json:"input,omitempty"`
	}
	_, body, err := c.postJSON("/v1/data/"+c.masksDataPath(), dataRequest{Input: c.input})
	if err != nil {
		return nil, fmt.Errorf("opa: masks request failed: %w", err)
	}
	return parseMasksResponse(body)
}

// parseMasksResponse reads {"result": {"source": {"column": {"replace":
// {"value": "***"}}}}}. Only string replacement values mask a column.
func parseMasksResponse(data []byte) (Masks, error) {
	var resp struct {
		Result map[string]map[string]map[string]any `json:"result"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("opa: parse masks response: %w", err)
	}

	var masks Masks
	for source, columns := range resp.Result {
		for column, action := range columns {
			replace, ok := action["replace"].(map[string]any)
			if !ok {
				continue
			}
			value, ok := replace["value"].(string)
			if !ok {
				continue
			}
			if masks == nil {
				masks = make(Masks)
			}
			key := strings.ToUpper(source)
			if masks[key] == nil {
				masks[key] = make(map[string]MaskAction)
			}
			masks[key][strings.ToUpper(column)] = MaskAction{Replace: &ReplaceAction{Value: value}}
		}
	}
	return masks, nil
}

// --- Explain ---

// ExplainTranslation records how a single residual expression was
// translated.
type ExplainTranslation struct {
	Operator string
	Column   string
	Value    any
	SQL      string // empty when the expression could not be translated
}

// ExplainResult holds diagnostics for one source.
type ExplainResult struct {
	RequestJSON        string
	RawJSON            string
	QueryCount         int
	ExpressionCount    int
	Translations       []ExplainTranslation
	Conditions         []nodes.Expression
	Masks              Masks
	UnconditionalAllow bool
	AccessDenied       bool
}

// Explain calls the Compile API for ref and reports how the residual
// translates into ksqlDB conditions.
func (c *Client) Explain(ref plugins.SourceRef) (*ExplainResult, error) {
	req, body, parsed, err := c.compile(ref)
	if err != nil {
		return nil, err
	}
	masks, _ := c.FetchMasks()

	queries := parsed.Result.Queries
	result := &ExplainResult{
		RequestJSON: string(req),
		RawJSON:     string(body),
		QueryCount:  len(queries),
		Masks:       masks,
	}
	for _, query := range queries {
		result.ExpressionCount += len(query)
	}
	switch {
	case len(queries) == 0:
		result.AccessDenied = true
		return result, nil
	case len(queries) == 1 && len(queries[0]) == 0:
		result.UnconditionalAllow = true
		return result, nil
	}

	for _, query := range queries {
		for _, expr := range query {
			var tr ExplainTranslation
			if len(expr.Terms) > 0 {
				tr.Operator, _ = extractOperator(expr.Terms[0])
			}
			if colTerm, valTerm, err := operands(expr); err == nil {
				tr.Column, _ = extractColumnName(colTerm)
				tr.Value = valTerm.Value
			}
			if cond, err := translateExpression(expr, ref.Qualifier); err == nil {
				tr.SQL, _ = visitors.Format(cond)
			}
			result.Translations = append(result.Translations, tr)
		}
	}

	result.Conditions, err = translateQueries(queries, ref.Qualifier)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// --- Input discovery ---

// inputRefPath returns the dotted path of an input ref such as
// input.subject.tenant.
func inputRefPath(term compileTerm) (string, bool) {
	parts, ok := refParts(term, "input")
	if !ok || len(parts) < 2 {
		return "", false
	}
	segments := make([]string, 0, len(parts)-1)
	for _, p := range parts[1:] {
		s, ok := p.Value.(string)
		if !ok || p.Type != "string" {
			return "", false
		}
		segments = append(segments, s)
	}
	return strings.Join(segments, "."), true
}

func extractInputPaths(resp *compileResponse) []string {
	var paths []string
	for _, query := range resp.Result.Queries {
		for _, expr := range query {
			for _, term := range expr.Terms {
				if path, ok := inputRefPath(term); ok && !slices.Contains(paths, path) {
					paths = append(paths, path)
				}
			}
		}
	}
	slices.Sort(paths)
	return paths
}

// DiscoverInputs partially evaluates the policy with the whole input
// unknown and returns the sorted input paths it references. Extra data
// unknowns (such as "data.orders") let rules over those documents leave
// residuals too.
func (c *Client) DiscoverInputs(dataUnknowns ...string) ([]string, error) {
	_, body, err := c.postJSON("/v1/compile", compileRequest{
		Query:    c.policyPath + " == true",
		Input:    map[string]any{},
		Unknowns: append([]string{"input"}, dataUnknowns...),
	})
	if err != nil {
		return nil, fmt.Errorf("opa: compile request failed: %w", err)
	}
	parsed, err := parseCompileResponse(body)
	if err != nil {
		return nil, err
	}
	return extractInputPaths(parsed), nil
}
