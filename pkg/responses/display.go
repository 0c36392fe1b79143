package responses

// Image is a picture. Added on its own it is shown as a basic card.
type Image struct {
	URL               string `json:"url"`
	AccessibilityText string `json:"accessibilityText"`
	Height            int    `json:"height,omitempty"`
	Width             int    `json:"width,omitempty"`
}

func (*Image) Kind() FragmentKind   { return FragmentKindDisplay }
func (*Image) fragment()            {}
func (*Image) RequiresSimple() bool { return true }
func (i *Image) Item() RichResponseItem {
	return RichResponseItem{BasicCard: &BasicCard{Image: i}}
}

// OpenURLAction opens a URL on the device.
type OpenURLAction struct {
	URL         string `json:"url"`
	URLTypeHint string `json:"urlTypeHint,omitempty"`
}

// Button is a link button on a card.
type Button struct {
	Title         string         `json:"title"`
	OpenURLAction *OpenURLAction `json:"openUrlAction,omitempty"`
}

// NewButton returns a button opening url.
func NewButton(title, url string) Button {
	return Button{Title: title, OpenURLAction: &OpenURLAction{URL: url}}
}

// BasicCard is a card with text, an image and buttons.
type BasicCard struct {
	Title               string   `json:"title,omitempty"`
	Subtitle            string   `json:"subtitle,omitempty"`
	FormattedText       string   `json:"formattedText,omitempty"`
	Image               *Image   `json:"image,omitempty"`
	Buttons             []Button `json:"buttons,omitempty"`
	ImageDisplayOptions string   `json:"imageDisplayOptions,omitempty"`
}

func (*BasicCard) Kind() FragmentKind       { return FragmentKindDisplay }
func (*BasicCard) fragment()                {}
func (*BasicCard) RequiresSimple() bool     { return true }
func (c *BasicCard) Item() RichResponseItem { return RichResponseItem{BasicCard: c} }

// ColumnProperty describes one table column.
type ColumnProperty struct {
	Header              string `json:"header"`
	HorizontalAlignment string `json:"horizontalAlignment,omitempty"`
}

// Cell is one table cell.
type Cell struct {
	Text string `json:"text"`
}

// Row is one table row.
type Row struct {
	Cells        []Cell `json:"cells,omitempty"`
	DividerAfter bool   `json:"dividerAfter,omitempty"`
}

// Table is a table card.
type Table struct {
	Title            string           `json:"title,omitempty"`
	Subtitle         string           `json:"subtitle,omitempty"`
	Image            *Image           `json:"image,omitempty"`
	ColumnProperties []ColumnProperty `json:"columnProperties,omitempty"`
	Rows             []Row            `json:"rows,omitempty"`
	Buttons          []Button         `json:"buttons,omitempty"`
}

func (*Table) Kind() FragmentKind       { return FragmentKindDisplay }
func (*Table) fragment()                {}
func (*Table) RequiresSimple() bool     { return true }
func (t *Table) Item() RichResponseItem { return RichResponseItem{TableCard: t} }

// NewTable builds a table from headers and string rows.
func NewTable(headers []string, rows ...[]string) *Table {
	t := &Table{}
	for _, h := range headers {
		t.ColumnProperties = append(t.ColumnProperties, ColumnProperty{Header: h})
	}
	for _, r := range rows {
		row := Row{}
		for _, c := range r {
			row.Cells = append(row.Cells, Cell{Text: c})
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// BrowseCarouselItem is one tile of a browse carousel.
type BrowseCarouselItem struct {
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	Footer        string         `json:"footer,omitempty"`
	Image         *Image         `json:"image,omitempty"`
	OpenURLAction *OpenURLAction `json:"openUrlAction,omitempty"`
}

func (*BrowseCarouselItem) Kind() FragmentKind   { return FragmentKindDisplay }
func (*BrowseCarouselItem) fragment()            {}
func (*BrowseCarouselItem) RequiresSimple() bool { return true }
func (i *BrowseCarouselItem) Item() RichResponseItem {
	return RichResponseItem{CarouselBrowse: &BrowseCarousel{Items: []BrowseCarouselItem{*i}}}
}

// BrowseCarousel is a carousel of external links.
type BrowseCarousel struct {
	Items               []BrowseCarouselItem `json:"items"`
	ImageDisplayOptions string               `json:"imageDisplayOptions,omitempty"`
}

func (*BrowseCarousel) Kind() FragmentKind       { return FragmentKindDisplay }
func (*BrowseCarousel) fragment()                {}
func (*BrowseCarousel) RequiresSimple() bool     { return true }
func (c *BrowseCarousel) Item() RichResponseItem { return RichResponseItem{CarouselBrowse: c} }

// Media types accepted by MediaResponse.
const (
	MediaTypeAudio = "AUDIO"
)

// MediaObject is a playable media file. Added on its own it becomes a media response.
type MediaObject struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ContentURL  string `json:"contentUrl"`
	LargeImage  *Image `json:"largeImage,omitempty"`
	Icon        *Image `json:"icon,omitempty"`
}

func (*MediaObject) Kind() FragmentKind   { return FragmentKindDisplay }
func (*MediaObject) fragment()            {}
func (*MediaObject) RequiresSimple() bool { return true }
func (m *MediaObject) Item() RichResponseItem {
	return RichResponseItem{MediaResponse: &MediaResponse{
		MediaType:    MediaTypeAudio,
		MediaObjects: []MediaObject{*m},
	}}
}

// MediaResponse plays one or more media objects.
type MediaResponse struct {
	MediaType    string        `json:"mediaType"`
	MediaObjects []MediaObject `json:"mediaObjects"`
}

func (*MediaResponse) Kind() FragmentKind       { return FragmentKindDisplay }
func (*MediaResponse) fragment()                {}
func (*MediaResponse) RequiresSimple() bool     { return true }
func (m *MediaResponse) Item() RichResponseItem { return RichResponseItem{MediaResponse: m} }

// HTMLResponse drives an interactive canvas web app.
type HTMLResponse struct {
	URL          string         `json:"url,omitempty"`
	UpdatedState map[string]any `json:"updatedState,omitempty"`
	SuppressMic  bool           `json:"suppressMic,omitempty"`
}

func (*HTMLResponse) Kind() FragmentKind { return FragmentKindDisplay }
func (*HTMLResponse) fragment()          {}

// RequiresSimple is false: a canvas update may be sent on its own.
func (*HTMLResponse) RequiresSimple() bool     { return false }
func (h *HTMLResponse) Item() RichResponseItem { return RichResponseItem{HTMLResponse: h} }

var (
	_ DisplayItem = (*Image)(nil)
	_ DisplayItem = (*BasicCard)(nil)
	_ DisplayItem = (*Table)(nil)
	_ DisplayItem = (*BrowseCarouselItem)(nil)
	_ DisplayItem = (*BrowseCarousel)(nil)
	_ DisplayItem = (*MediaObject)(nil)
	_ DisplayItem = (*MediaResponse)(nil)
	_ DisplayItem = (*HTMLResponse)(nil)
)
