package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/mizutori/pagelens/internal/api"
	"github.com/mizutori/pagelens/internal/svcctx"
)

// StatusEndpoint reports the server's run state and counters.
type StatusEndpoint struct{}

// StatusResponse is the body returned by GET /.
type StatusResponse struct {
	Status            string `json:"status"`
	Backend           string `json:"backend"`
	RequestsProcessed uint64 `json:"requests_processed"`
	ItemsInCache      int    `json:"items_in_cache"`
	ActiveJobs        int64  `json:"active_jobs"`
}

func (e *StatusEndpoint) Route() (string, string, http.HandlerFunc) {
	return http.MethodGet, "/{$}", e.handle
}

func (e *StatusEndpoint) RequiresInit() bool { return true }

func (e *StatusEndpoint) handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	store := svcctx.CacheFrom(ctx)
	counters := svcctx.CountersFrom(ctx)
	proc := svcctx.PipelineFrom(ctx)

	writeJSON(w, http.StatusOK, StatusResponse{
		Status:            "running",
		Backend:           proc.Backend(),
		RequestsProcessed: counters.RequestsProcessed(),
		ItemsInCache:      store.Len(),
		ActiveJobs:        counters.ActiveJobs(),
	})
}

func (e *StatusEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server status and counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp StatusResponse
			if err := client.Get(cmd.Context(), "/", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
