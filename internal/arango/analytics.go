package arango

import (
	"context"
	"fmt"
	"time"

	driver "github.com/arangodb/go-driver"
	"go.uber.org/zap"
)

// Analytics algorithms offered by the storage engine's Pregel runner, each
// writing a named result field back onto node documents.
type Algorithm struct {
	Name        string
	Pregel      driver.PregelAlgorithm
	ResultField string
}

var Algorithms = []Algorithm{
	{Name: "pagerank", Pregel: driver.PregelAlgorithmPageRank, ResultField: "_pagerank"},
	{Name: "linerank", Pregel: driver.PregelAlgorithmLineRank, ResultField: "_centrality"},
	{Name: "labelpropagation", Pregel: driver.PregelAlgorithmLabelPropagation, ResultField: "_community_lpa"},
	{Name: "slpa", Pregel: driver.PregelAlgorithmSpeakerListenerLabelPropagation, ResultField: "_community_slpa"},
}

const (
	analyticsPollInterval = 250 * time.Millisecond
	// analyticsMaxWait bounds the polling loop; an analytics job that does
	// not settle in time is abandoned, not failed.
	analyticsMaxWait = 5 * time.Minute
)

// RunAnalytics starts one analytics job against the named graph and polls at
// a fixed interval until the job leaves its running/storing states or the
// max wait elapses.
func (d *Database) RunAnalytics(ctx context.Context, graphName string, algorithm Algorithm) error {
	jobID, err := d.db.StartJob(ctx, driver.PregelJobOptions{
		Algorithm: algorithm.Pregel,
		GraphName: graphName,
		Params: map[string]interface{}{
			"resultField": algorithm.ResultField,
			"store":       true,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start %s job on %s: %w", algorithm.Name, graphName, err)
	}

	deadline := time.Now().Add(analyticsMaxWait)
	for {
		job, err := d.db.GetJob(ctx, jobID)
		if err != nil {
			return fmt.Errorf("failed to poll %s job %s: %w", algorithm.Name, jobID, err)
		}

		switch job.State {
		case driver.PregelJobStateLoading, driver.PregelJobStateRunning, driver.PregelJobStateStoring:
		default:
			return nil
		}

		if time.Now().After(deadline) {
			d.Logger().Warn("abandoning analytics job after max wait",
				zap.String("graph", graphName),
				zap.String("algorithm", algorithm.Name),
				zap.String("job_id", jobID),
			)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(analyticsPollInterval):
		}
	}
}

// DegreeField is the reserved field that per-node degree counts are written
// into. Like analytics result fields, it is not reflected back into table
// type annotations.
const DegreeField = "_degree"

// ComputeDegree writes each node's undirected incident-edge count back onto
// its document. Traversal queries operate against a single node collection,
// so this runs once per node table.
func (d *Database) ComputeDegree(ctx context.Context, graphName, nodeTable string) error {
	statement := `
		FOR doc IN @@NODES
			LET degree = LENGTH(
				FOR v, e IN 1..1 ANY doc GRAPH @GRAPH
					RETURN e
			)
			UPDATE doc WITH { _degree: degree } IN @@NODES
	`
	_, err := d.Query(ctx, statement, map[string]interface{}{
		"@NODES": nodeTable,
		"GRAPH":  graphName,
	})
	if err != nil {
		return fmt.Errorf("failed to compute degree for %s: %w", nodeTable, err)
	}
	return nil
}
