package content

// Engagement holds optional counters. A nil field means the source did not
// report that metric, which is different from a reported zero.
type Engagement struct {
	Likes    *int64 `json:"likes,omitempty"`
	Comments *int64 `json:"comments,omitempty"`
	Shares   *int64 `json:"shares,omitempty"`
	Views    *int64 `json:"views,omitempty"`
}

// Count returns a pointer suitable for an Engagement field.
func Count(v int64) *int64 {
	return &v
}

func (e Engagement) LikesOrZero() int64    { return valueOrZero(e.Likes) }
func (e Engagement) CommentsOrZero() int64 { return valueOrZero(e.Comments) }
func (e Engagement) ViewsOrZero() int64    { return valueOrZero(e.Views) }

// Max combines two engagement records field by field. A field known on only
// one side keeps that value; a field unknown on both stays unknown.
func (e Engagement) Max(other Engagement) Engagement {
	return Engagement{
		Likes:    maxKnown(e.Likes, other.Likes),
		Comments: maxKnown(e.Comments, other.Comments),
		Shares:   maxKnown(e.Shares, other.Shares),
		Views:    maxKnown(e.Views, other.Views),
	}
}

func maxKnown(a, b *int64) *int64 {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return Count(*b)
	case b == nil:
		return Count(*a)
	default:
		return Count(max(*a, *b))
	}
}

func valueOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
