package tasks

import (
	"github.com/hibiken/asynq"

	"github.com/multinet-app/multinet-api/internal/appcontext"
)

// NewWorker builds the task server and its handler mux. Tasks run in
// parallel across the worker pool with no ordering guarantee between them;
// each pipeline is sequential internally.
func NewWorker(app *appcontext.Context, redisOpt asynq.RedisClientOpt) (*asynq.Server, *asynq.ServeMux) {
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeProcessCSV, ProcessCSV(app))
	mux.HandleFunc(TypeProcessJSONTable, ProcessJSONTable(app))
	mux.HandleFunc(TypeProcessJSONNetwork, ProcessJSONNetwork(app))
	mux.HandleFunc(TypeExecuteQuery, ExecuteQuery(app))

	return server, mux
}
