package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/mizutori/pagelens/internal/api"
	"github.com/mizutori/pagelens/internal/cache"
	"github.com/mizutori/pagelens/internal/svcctx"
)

// ExportCacheEndpoint dumps the whole cache as JSON.
type ExportCacheEndpoint struct{}

func (e *ExportCacheEndpoint) Route() (string, string, http.HandlerFunc) {
	return http.MethodGet, "/export-cache", e.handle
}

func (e *ExportCacheEndpoint) RequiresInit() bool { return true }

func (e *ExportCacheEndpoint) handle(w http.ResponseWriter, r *http.Request) {
	store := svcctx.CacheFrom(r.Context())
	writeJSON(w, http.StatusOK, store.Export())
}

func (e *ExportCacheEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "export-cache",
		Short: "Dump all cached OCR results",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp map[string]cache.Entry
			if err := client.Get(cmd.Context(), "/export-cache", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
