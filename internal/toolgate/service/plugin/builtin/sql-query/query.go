package sqlquery

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/kiosk404/toolgate/internal/toolgate/pkg/errno"
	"github.com/kiosk404/toolgate/internal/toolgate/service/tool"
)

// QueryDefinition is the contract of the sql_query tool.
func QueryDefinition() tool.Definition {
	return tool.Definition{
		Name:        "sql_query",
		Description: "Run a read-only SQL query (SELECT or WITH) and return the rows as JSON.",
		Parameters: []tool.Param{
			{Name: "query", Type: tool.String, Description: "A single SELECT statement", Required: true},
			{Name: "args", Type: tool.Array, Description: "Positional parameters bound to '?' placeholders"},
		},
	}
}

type queryTool struct {
	db      *sql.DB
	maxRows int
}

// QueryResult is the JSON payload returned by sql_query.
type QueryResult struct {
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
	Truncated bool     `json:"truncated,omitempty"`
}

func (t *queryTool) Invoke(ctx context.Context, args map[string]any) (*tool.Result, error) {
	query, err := tool.RequireString(args, "query")
	if err != nil {
		return nil, err
	}
	if err := CheckReadOnly(query); err != nil {
		return nil, err
	}
	var params []any
	if raw, ok := args["args"].([]any); ok {
		params = raw
	}

	rows, err := t.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	result, err := collect(rows, t.maxRows)
	if err != nil {
		return nil, err
	}
	return tool.JSONResult(result)
}

func collect(rows *sql.Rows, maxRows int) (*QueryResult, error) {
	if maxRows <= 0 {
		maxRows = defaultMaxRows
	}
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	result := &QueryResult{Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		if len(result.Rows) >= maxRows {
			result.Truncated = true
			break
		}
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	return result, rows.Err()
}

// CheckReadOnly accepts a single SELECT or WITH statement.
func CheckReadOnly(query string) error {
	q := strings.TrimSpace(query)
	q = strings.TrimSuffix(q, ";")
	if strings.Contains(q, ";") {
		return fmt.Errorf("%w: only a single statement is allowed", errno.ErrInvalidArguments)
	}
	fields := strings.Fields(q)
	if len(fields) == 0 {
		return fmt.Errorf("%w: empty query", errno.ErrInvalidArguments)
	}
	switch strings.ToUpper(fields[0]) {
	case "SELECT", "WITH":
		return nil
	}
	return fmt.Errorf("%w: only SELECT queries are allowed", errno.ErrInvalidArguments)
}
