package domain

const DefaultStyle = "romantic"

type Style struct {
	Key         string `json:"key"`
	Description string `json:"description"`
}

// StyleCatalog is the closed set of reply tones a user can pick from.
type StyleCatalog struct {
	styles []Style
	byKey  map[string]string
}

func NewStyleCatalog(styles []Style) StyleCatalog {
	c := StyleCatalog{
		styles: append([]Style{}, styles...),
		byKey:  make(map[string]string, len(styles)),
	}
	for _, s := range styles {
		c.byKey[s.Key] = s.Description
	}
	return c
}

func DefaultStyleCatalog() StyleCatalog {
	return NewStyleCatalog([]Style{
		{Key: "romantic", Description: "warm, affectionate and romantic"},
		{Key: "playful", Description: "playful, teasing and flirty"},
		{Key: "supportive", Description: "supportive, understanding and empathetic"},
		{Key: "passionate", Description: "passionate, intense and deeply emotional"},
		{Key: "casual", Description: "casual, relaxed and friendly"},
	})
}

func (c StyleCatalog) Has(key string) bool {
	_, ok := c.byKey[key]
	return ok
}

// Describe returns the description for key, falling back to the default style.
func (c StyleCatalog) Describe(key string) string {
	if d, ok := c.byKey[key]; ok {
		return d
	}
	return c.byKey[DefaultStyle]
}

func (c StyleCatalog) List() []Style {
	return append([]Style{}, c.styles...)
}
