package endpoints

import "github.com/mizutori/pagelens/internal/api"

// All returns every endpoint the server exposes, in route registration
// order.
func All() []api.Endpoint {
	return []api.Endpoint{
		&StatusEndpoint{},
		&HealthEndpoint{},
		&OCREndpoint{},
		&PreprocessChapterEndpoint{},
		&ChapterStatusEndpoint{},
		&PurgeCacheEndpoint{},
		&ExportCacheEndpoint{},
		&ImportCacheEndpoint{},
	}
}
