// Package statute defines the corpus data model shared by the retrieval
// pipeline and the agent loop.
package statute

// Fragment is one indexed unit of statute text together with its relational
// metadata and the similarity score stamped after the vector/metadata join.
type Fragment struct {
	ID            string  `json:"id"`
	Distance      float32 `json:"_distance"` // lower = more similar; 0 before join
	Content       string  `json:"content"`
	LawName       string  `json:"law_name"`
	Category      string  `json:"category"`
	PublishDate   string  `json:"publish_date"`
	Part          string  `json:"part"`
	Chapter       string  `json:"chapter"`
	ArticleNumber string  `json:"article_number"`
	Region        string  `json:"region"`
	SourceFile    string  `json:"source_file"`
}

// Category values as stored in the corpus.
const (
	CategoryStatute                  = "法律"
	CategoryJudicialInterpretation   = "司法解释"
	CategoryAdministrativeRegulation = "行政法规"
	CategoryLocalRegulation          = "地方法规"
)

// CategoryPriority ranks categories for name-search ordering: national
// statutes first, local regulations last, unknown categories at the end.
func CategoryPriority(category string) int {
	switch category {
	case CategoryStatute:
		return 1
	case CategoryJudicialInterpretation:
		return 2
	case CategoryAdministrativeRegulation:
		return 3
	case CategoryLocalRegulation:
		return 4
	default:
		return 99
	}
}

// NameSuggestion is a law-name autocomplete row.
type NameSuggestion struct {
	Name     string `json:"name"`
	Region   string `json:"region"`
	Category string `json:"category"`
}
