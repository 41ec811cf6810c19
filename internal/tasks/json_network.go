package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/multinet-app/multinet-api/internal/appcontext"
	"github.com/multinet-app/multinet-api/internal/ingest"
	"github.com/multinet-app/multinet-api/internal/services"
	"github.com/multinet-app/multinet-api/internal/utils"
)

// parseNetworkFile splits a D3-style JSON network into its node and link
// rows. The link array may appear under either "links" or "edges".
func parseNetworkFile(data []byte) (nodes, links []map[string]interface{}, err error) {
	var network struct {
		Nodes []map[string]interface{} `json:"nodes"`
		Links []map[string]interface{} `json:"links"`
		Edges []map[string]interface{} `json:"edges"`
	}
	if err := json.Unmarshal(data, &network); err != nil {
		return nil, nil, &ingest.DataFormatError{Message: "failed to parse JSON network file"}
	}

	switch {
	case network.Links != nil:
		links = network.Links
	case network.Edges != nil:
		links = network.Edges
	default:
		return nil, nil, &ingest.DataFormatError{Message: "JSON network file missing 'links' or 'edges' property"}
	}

	if network.Nodes == nil {
		return nil, nil, &ingest.DataFormatError{Message: "JSON network file missing 'nodes' property"}
	}

	return network.Nodes, links, nil
}

// ProcessJSONNetwork ingests a D3-style JSON graph: one node table, one edge
// table qualified by the node table's name, and the network linking them.
func ProcessJSONNetwork(app *appcontext.Context) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p ProcessJSONNetworkPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("failed to decode json network payload: %w", err)
		}

		upload, workspace, err := loadUpload(app, p.UploadID)
		if err != nil {
			return err
		}

		return runTask(app, p.UploadID, upload, func() error {
			data, err := utils.ReadBlob(ctx, app, upload.Blob)
			if err != nil {
				return err
			}

			nodes, links, err := parseNetworkFile(data)
			if err != nil {
				return err
			}

			nodeColumns, err := parseColumnTypes(p.NodeColumns)
			if err != nil {
				return err
			}
			edgeColumns, err := parseColumnTypes(p.EdgeColumns)
			if err != nil {
				return err
			}

			if _, _, err := services.BuildTable(ctx, app, workspace, services.BuildTableOptions{
				Name:    p.NodeTableName,
				Columns: nodeColumns,
			}, nodes); err != nil {
				return err
			}

			if _, _, err := services.BuildTable(ctx, app, workspace, services.BuildTableOptions{
				Name:          p.EdgeTableName,
				Edge:          true,
				Columns:       edgeColumns,
				NodeTableName: p.NodeTableName,
			}, links); err != nil {
				return err
			}

			_, err = services.CreateNetwork(ctx, app, workspace, p.NetworkName, p.EdgeTableName, []string{p.NodeTableName}, services.NetworkOptions{
				RunAnalysis:   p.RunAnalysis,
				ComputeDegree: p.ComputeDegree,
			})
			return err
		})
	}
}
