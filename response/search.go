package response

type SearchResponse struct {
	Results    []SourceResponse `json:"results"`
	Total      int              `json:"total"`
	Query      string           `json:"query"`
	SearchMode string           `json:"search_mode"`
}
