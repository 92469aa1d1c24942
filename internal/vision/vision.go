package vision

import (
	"context"
	"io"
)

// AnalysisPrompt is the fixed prompt sent with every penny photo.
const AnalysisPrompt = `This is a photo of an elongated (pressed) penny souvenir.
Identify it and respond with exactly three lines:
Location: <the attraction or landmark the penny is from>
Description: <2-3 sentences describing the pressed design and its origin>
Date: <estimated production era, e.g. 1990-2010>`

// Analyzer turns a penny photo into a suggested catalog entry. The response
// text is treated as opaque free text; it is stored verbatim and only split
// into labeled fields as a convenience for the entry form.
type Analyzer interface {
	Analyze(ctx context.Context, r io.Reader, mimeType string) (*Analysis, error)
}

// Analysis is the parsed model response.
type Analysis struct {
	Location      string
	Description   string
	EstimatedDate string
	RawResponse   string
}
