package category

type Category struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type CategoryInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// Summary is the trimmed projection embedded in product responses.
type Summary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
