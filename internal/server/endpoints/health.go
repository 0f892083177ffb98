package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/mizutori/pagelens/internal/api"
)

// HealthEndpoint is a liveness probe. It answers before the cache or
// pipeline are consulted.
type HealthEndpoint struct{}

func (e *HealthEndpoint) Route() (string, string, http.HandlerFunc) {
	return http.MethodGet, "/health", e.handle
}

func (e *HealthEndpoint) RequiresInit() bool { return false }

func (e *HealthEndpoint) handle(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (e *HealthEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check whether the server is up",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp map[string]string
			if err := client.Get(cmd.Context(), "/health", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
