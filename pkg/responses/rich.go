package responses

// SimpleResponse is a speakable item with optional display text.
type SimpleResponse struct {
	TextToSpeech string `json:"textToSpeech,omitempty" yaml:"text_to_speech,omitempty"`
	SSML         string `json:"ssml,omitempty" yaml:"ssml,omitempty"`
	DisplayText  string `json:"displayText,omitempty" yaml:"display_text,omitempty"`
}

func (SimpleResponse) Kind() FragmentKind { return FragmentKindSimple }
func (SimpleResponse) fragment()          {}

// NewSimpleResponse returns a SimpleResponse speaking text.
func NewSimpleResponse(text string) SimpleResponse {
	return SimpleResponse{TextToSpeech: text}
}

// RichResponseItem is one entry of RichResponse.Items. Exactly one field is set.
type RichResponseItem struct {
	SimpleResponse *SimpleResponse `json:"simpleResponse,omitempty"`
	BasicCard      *BasicCard      `json:"basicCard,omitempty"`
	MediaResponse  *MediaResponse  `json:"mediaResponse,omitempty"`
	CarouselBrowse *BrowseCarousel `json:"carouselBrowse,omitempty"`
	TableCard      *Table          `json:"tableCard,omitempty"`
	HTMLResponse   *HTMLResponse   `json:"htmlResponse,omitempty"`
}

// IsSimple reports whether the item is a speakable response.
func (i RichResponseItem) IsSimple() bool {
	return i.SimpleResponse != nil
}

// Suggestion is a single suggestion chip.
type Suggestion struct {
	Title string `json:"title"`
}

// RichResponse is the merged, multi-part output of a turn.
//
// Added as a fragment it replaces everything accumulated before it.
type RichResponse struct {
	Items             []RichResponseItem `json:"items,omitempty"`
	Suggestions       []Suggestion       `json:"suggestions,omitempty"`
	LinkOutSuggestion *LinkOutSuggestion `json:"linkOutSuggestion,omitempty"`
}

func (*RichResponse) Kind() FragmentKind { return FragmentKindRichResponse }
func (*RichResponse) fragment()          {}

// NewRichResponse returns an empty rich response.
func NewRichResponse() *RichResponse {
	return &RichResponse{}
}

// AddText appends simple responses for each text.
func (r *RichResponse) AddText(texts ...string) *RichResponse {
	for _, t := range texts {
		s := NewSimpleResponse(t)
		r.Items = append(r.Items, RichResponseItem{SimpleResponse: &s})
	}
	return r
}

// AddSimple appends a simple response.
func (r *RichResponse) AddSimple(s SimpleResponse) *RichResponse {
	r.Items = append(r.Items, RichResponseItem{SimpleResponse: &s})
	return r
}

// AddItem appends display items.
func (r *RichResponse) AddItem(items ...DisplayItem) *RichResponse {
	for _, it := range items {
		r.Items = append(r.Items, it.Item())
	}
	return r
}

// AddSuggestions appends suggestion chips.
func (r *RichResponse) AddSuggestions(s *Suggestions) *RichResponse {
	if s == nil {
		return r
	}
	for _, title := range s.Titles {
		r.Suggestions = append(r.Suggestions, Suggestion{Title: title})
	}
	return r
}

// SetLinkOut sets the external link suggestion.
func (r *RichResponse) SetLinkOut(l *LinkOutSuggestion) *RichResponse {
	r.LinkOutSuggestion = l
	return r
}

// HasSimple reports whether any item is speakable.
func (r *RichResponse) HasSimple() bool {
	if r == nil {
		return false
	}
	for _, it := range r.Items {
		if it.IsSimple() {
			return true
		}
	}
	return false
}

// IsEmpty reports whether nothing would be rendered.
func (r *RichResponse) IsEmpty() bool {
	return r == nil || (len(r.Items) == 0 && len(r.Suggestions) == 0 && r.LinkOutSuggestion == nil)
}

// Clone returns a copy with new slices. Item payloads are shared.
func (r *RichResponse) Clone() *RichResponse {
	if r == nil {
		return nil
	}
	out := &RichResponse{LinkOutSuggestion: r.LinkOutSuggestion}
	if len(r.Items) > 0 {
		out.Items = append([]RichResponseItem(nil), r.Items...)
	}
	if len(r.Suggestions) > 0 {
		out.Suggestions = append([]Suggestion(nil), r.Suggestions...)
	}
	return out
}

// Suggestions is a set of suggestion chips. Several Suggestions fragments merge.
type Suggestions struct {
	Titles []string
}

func (*Suggestions) Kind() FragmentKind { return FragmentKindSuggestions }
func (*Suggestions) fragment()          {}

// NewSuggestions returns a suggestion chip set.
func NewSuggestions(titles ...string) *Suggestions {
	return &Suggestions{Titles: titles}
}

// LinkOutSuggestion points the user at an external destination.
type LinkOutSuggestion struct {
	DestinationName string         `json:"destinationName"`
	URL             string         `json:"url,omitempty"`
	OpenURLAction   *OpenURLAction `json:"openUrlAction,omitempty"`
}

func (*LinkOutSuggestion) Kind() FragmentKind { return FragmentKindLinkOut }
func (*LinkOutSuggestion) fragment()          {}

// NewLinkOutSuggestion returns a link suggestion opening url.
func NewLinkOutSuggestion(name, url string) *LinkOutSuggestion {
	return &LinkOutSuggestion{
		DestinationName: name,
		OpenURLAction:   &OpenURLAction{URL: url},
	}
}
