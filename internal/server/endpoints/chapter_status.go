package endpoints

import (
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mizutori/pagelens/internal/api"
	"github.com/mizutori/pagelens/internal/svcctx"
)

// ChapterStatusEndpoint answers whether a chapter has been preprocessed.
type ChapterStatusEndpoint struct{}

// ChapterStatusResponse is the body returned by GET /is-chapter-preprocessed.
// Progress and Total are present only while a job is running.
type ChapterStatusResponse struct {
	Status   string `json:"status"`
	Progress *int   `json:"progress,omitempty"`
	Total    *int   `json:"total,omitempty"`
}

func (e *ChapterStatusEndpoint) Route() (string, string, http.HandlerFunc) {
	return http.MethodGet, "/is-chapter-preprocessed", e.handle
}

func (e *ChapterStatusEndpoint) RequiresInit() bool { return true }

func (e *ChapterStatusEndpoint) handle(w http.ResponseWriter, r *http.Request) {
	manager := svcctx.JobsFrom(r.Context())

	baseURL := r.URL.Query().Get("base_url")
	if baseURL == "" {
		writeError(w, http.StatusBadRequest, "missing required parameter: base_url")
		return
	}

	status := manager.ChapterStatus(baseURL)
	resp := ChapterStatusResponse{Status: status.State}
	if status.State == "processing" {
		resp.Progress = &status.Current
		resp.Total = &status.Total
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *ChapterStatusEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "chapter-status <base-url>",
		Short: "Check whether a chapter has been preprocessed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("base_url", args[0])

			client := api.NewClient(getServerURL())
			var resp ChapterStatusResponse
			if err := client.Get(cmd.Context(), "/is-chapter-preprocessed?"+q.Encode(), &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
