package models

const (
	DefaultEmbeddingModel = "text-embedding-3-small"
	DefaultEmbeddingBase  = "https://api.openai.com/v1"
	DefaultOllamaBase     = "http://localhost:11434"

	// CSV rendering
	FieldSeparator = " | "
	RowSeparator   = "\n"
	KeyValueFormat = "%s: %s"

	SheetHeaderFormat = "## Sheet: %s"
)
