package model

// Policy holds the per-field ordered source preference used during
// aggregation. For each field the first listed source with a usable value
// wins; the lists name sources before alias expansion.
type Policy struct {
	Title       []string `json:"title" mapstructure:"title"`
	Description []string `json:"description" mapstructure:"description"`
	ReleaseDate []string `json:"release_date" mapstructure:"release_date"`
	Runtime     []string `json:"runtime" mapstructure:"runtime"`
	Maker       []string `json:"maker" mapstructure:"maker"`
	Actress     []string `json:"actress" mapstructure:"actress"`
	Genre       []string `json:"genre" mapstructure:"genre"`
	CoverURL    []string `json:"cover_url" mapstructure:"cover_url"`
}

// DefaultPolicy returns the stock field priorities.
func DefaultPolicy() Policy {
	return Policy{
		Title:       []string{"r18dev", "javlibrary", "dmm"},
		Description: []string{"dmm", "r18dev"},
		ReleaseDate: []string{"r18dev", "javlibrary", "dmm"},
		Runtime:     []string{"r18dev", "javlibrary", "dmm"},
		Maker:       []string{"r18dev", "javlibrary", "dmm"},
		Actress:     []string{"r18dev", "dmm", "javlibrary"},
		Genre:       []string{"r18dev", "javlibrary", "dmm"},
		CoverURL:    []string{"r18dev", "dmm", "javlibrary"},
	}
}
