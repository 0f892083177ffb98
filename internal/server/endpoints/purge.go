package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/mizutori/pagelens/internal/api"
	"github.com/mizutori/pagelens/internal/svcctx"
)

// PurgeCacheEndpoint empties the OCR cache, in memory and on disk.
type PurgeCacheEndpoint struct{}

func (e *PurgeCacheEndpoint) Route() (string, string, http.HandlerFunc) {
	return http.MethodPost, "/purge-cache", e.handle
}

func (e *PurgeCacheEndpoint) RequiresInit() bool { return true }

func (e *PurgeCacheEndpoint) handle(w http.ResponseWriter, r *http.Request) {
	store := svcctx.CacheFrom(r.Context())

	if err := store.Purge(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to persist purged cache: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (e *PurgeCacheEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-cache",
		Short: "Delete all cached OCR results",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp map[string]string
			if err := client.Post(cmd.Context(), "/purge-cache", nil, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
