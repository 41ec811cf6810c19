// Package tasks contains the asynchronous ingestion pipelines and the state
// machine that tracks them: PENDING -> STARTED -> FINISHED | FAILED, with the
// terminal states final.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task kinds. One asynq handler is registered per kind.
const (
	TypeProcessCSV         = "upload:process_csv"
	TypeProcessJSONTable   = "upload:process_json_table"
	TypeProcessJSONNetwork = "upload:process_json_network"
	TypeExecuteQuery       = "query:execute"
)

// ColumnSpec is the wire-level declaration of one CSV column's role.
type ColumnSpec struct {
	Key  string `json:"key" binding:"required"`
	Type string `json:"type" binding:"required"`
}

// Payloads are JSON objects of named fields only: tasks may be re-dispatched
// by the scheduler, which preserves nothing but these bindings.

type ProcessCSVPayload struct {
	UploadID  uuid.UUID    `json:"upload_id"`
	TableName string       `json:"table_name"`
	Edge      bool         `json:"edge"`
	Columns   []ColumnSpec `json:"columns"`
	Delimiter string       `json:"delimiter"`
	QuoteChar string       `json:"quotechar"`
}

type ProcessJSONTablePayload struct {
	UploadID  uuid.UUID         `json:"upload_id"`
	TableName string            `json:"table_name"`
	Edge      bool              `json:"edge"`
	Columns   map[string]string `json:"columns"`
}

type ProcessJSONNetworkPayload struct {
	UploadID      uuid.UUID         `json:"upload_id"`
	NetworkName   string            `json:"network_name"`
	NodeTableName string            `json:"node_table_name"`
	EdgeTableName string            `json:"edge_table_name"`
	NodeColumns   map[string]string `json:"node_columns"`
	EdgeColumns   map[string]string `json:"edge_columns"`
	RunAnalysis   bool              `json:"run_analysis"`
	ComputeDegree bool              `json:"compute_degree"`
}

type ExecuteQueryPayload struct {
	QueryID uuid.UUID `json:"query_id"`
}

// Enqueue serializes a payload and dispatches a task of the given kind.
// Tasks are not retried: the state machine records failure instead.
func Enqueue(ctx context.Context, client *asynq.Client, kind string, payload interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s payload: %w", kind, err)
	}

	info, err := client.EnqueueContext(ctx, asynq.NewTask(kind, data), asynq.MaxRetry(0))
	if err != nil {
		return "", fmt.Errorf("failed to enqueue %s: %w", kind, err)
	}
	return info.ID, nil
}
