package content

import (
	"errors"
	"strings"
	"testing"
)

func TestFingerprint(t *testing.T) {
	a := Item{Platform: PlatformX, CreatorHandle: "filmcrew1", Text: "How do you color grade fast? Struggling with workflow"}
	b := Item{Platform: PlatformX, CreatorHandle: "filmcrew1", Text: "how do you COLOR-GRADE fast?? struggling with workflow!"}
	c := Item{Platform: PlatformReddit, CreatorHandle: "filmcrew1", Text: a.Text}

	if Fingerprint(a) != Fingerprint(b) {
		t.Errorf("Expected equal fingerprints, got '%s' and '%s'", Fingerprint(a), Fingerprint(b))
	}
	if Fingerprint(a) == Fingerprint(c) {
		t.Error("Expected different platforms to produce different fingerprints")
	}

	expected := "x:filmcrew1:howdoyoucolorgradefaststrugglingwithworkflow"
	if Fingerprint(a) != expected {
		t.Errorf("Expected fingerprint '%s', got '%s'", expected, Fingerprint(a))
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		limit    int
		expected string
	}{
		{"diacritics", "Café Crème", 200, "cafecreme"},
		{"punctuation", "What's up?!", 200, "whatsup"},
		{"limit", strings.Repeat("ab", 150), 200, strings.Repeat("ab", 100)},
		{"empty", "   ", 200, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.input, tt.limit); got != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}

func TestEngagementMax(t *testing.T) {
	a := Engagement{Likes: Count(10), Views: Count(5000)}
	b := Engagement{Likes: Count(3), Comments: Count(0), Views: Count(12000)}

	merged := a.Max(b)

	if *merged.Likes != 10 {
		t.Errorf("Expected likes 10, got %d", *merged.Likes)
	}
	if merged.Comments == nil || *merged.Comments != 0 {
		t.Errorf("Expected comments known as 0, got %v", merged.Comments)
	}
	if merged.Shares != nil {
		t.Errorf("Expected shares unknown, got %d", *merged.Shares)
	}
	if *merged.Views != 12000 {
		t.Errorf("Expected views 12000, got %d", *merged.Views)
	}
}

func TestOriginsUnion(t *testing.T) {
	merged := Origins{"reddit", "websearch"}.Union(Origins{"websearch", "youtube"})

	expected := []string{"reddit", "websearch", "youtube"}
	if len(merged) != len(expected) {
		t.Fatalf("Expected %d origins, got %d", len(expected), len(merged))
	}
	for i, name := range expected {
		if merged[i] != name {
			t.Errorf("Expected origin %d to be '%s', got '%s'", i, name, merged[i])
		}
	}
}

func TestValidate(t *testing.T) {
	valid := Item{
		Platform:      PlatformReddit,
		ExternalID:    "abc123",
		CreatorHandle: "someone",
		Text:          "A long enough post body",
		Permalink:     "https://reddit.com/r/x/comments/abc123",
	}

	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid item, got %v", err)
	}

	tests := []struct {
		name  string
		item  func(Item) Item
		field string
	}{
		{"no permalink", func(i Item) Item { i.Permalink = ""; return i }, "permalink"},
		{"short text", func(i Item) Item { i.Text = "too short"; return i }, "text"},
		{"exactly ten", func(i Item) Item { i.Text = "0123456789"; return i }, "text"},
		{"no handle", func(i Item) Item { i.CreatorHandle = " "; return i }, "creator_handle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item(valid).Validate()
			if !errors.Is(err, ErrInvalidItem) {
				t.Fatalf("Expected ErrInvalidItem, got %v", err)
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) || vErr.Field != tt.field {
				t.Errorf("Expected field '%s', got %v", tt.field, err)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Expected 'short', got '%s'", got)
	}
	if got := Truncate("héllo wörld", 8); got != "héllo..." {
		t.Errorf("Expected 'héllo...', got '%s'", got)
	}
}

func TestHasCommunityHandle(t *testing.T) {
	tests := []struct {
		handle   string
		expected bool
	}{
		{"r/editors", true},
		{"groups/editors", true},
		{"cutter42", false},
		{"@GradeLab", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := (Item{CreatorHandle: tt.handle}).HasCommunityHandle(); got != tt.expected {
			t.Errorf("HasCommunityHandle(%q): expected %v, got %v", tt.handle, tt.expected, got)
		}
	}
}
