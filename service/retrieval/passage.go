package retrieval

const (
	SourceTypeLegal        = "legal"
	SourceTypeUserDocument = "user_document"
)

const (
	ModeLegal  = "legal"
	ModeUser   = "user"
	ModeHybrid = "hybrid"
)

// Passage is one retrieved chunk with its legal provenance. Score is a
// normalized similarity in [0,1]; RerankScore is set only after a rerank pass.
type Passage struct {
	ID          string
	Text        string
	DieuNumber  string
	KhoanNumber string
	FileName    string
	SourceType  string
	Score       float64
	RerankScore *float64
	Rank        int
}
