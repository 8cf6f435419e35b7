package entity

type Style string

const (
	StyleSimple Style = "simple"
	StyleBorder Style = "border"
)

func (s Style) Valid() bool {
	return s == StyleSimple || s == StyleBorder
}

// ContentTemplate is one catalog entry. Text may contain line breaks.
type ContentTemplate struct {
	Text       string `json:"text" yaml:"text"`
	Caption    string `json:"caption" yaml:"caption"`
	Background string `json:"bg_color" yaml:"bg_color"`
	Foreground string `json:"text_color" yaml:"text_color"`
	Style      Style  `json:"style" yaml:"style"`
}

type RenderedAsset struct {
	Bytes    []byte
	MimeType string
	Width    int
	Height   int
}

type HostedAsset struct {
	PublicURL string `json:"public_url"`
	Provider  string `json:"provider"`
}
