package transform

import (
	"context"
)

// TransformRequest carries the raw material for one blog post.
type TransformRequest struct {
	Transcript  string
	Title       string
	Description string
}

// BlogDraft is the structured article produced from a transcript.
type BlogDraft struct {
	Title    string   `json:"title"`
	Excerpt  string   `json:"excerpt"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// Transformer turns a transcript into structured blog content.
type Transformer interface {
	Transform(ctx context.Context, req TransformRequest) (*BlogDraft, error)
}
