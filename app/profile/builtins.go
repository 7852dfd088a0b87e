package profile

import "github.com/lysyi3m/pulse-comb/app/rank"

func builtins() []*Profile {
	return []*Profile{
		{
			Name: "filmmaking",
			Keywords: []string{
				"film", "filmmaker", "director", "cinematographer", "videographer",
				"producer", "production", "camera", "lens", "lighting", "dp",
				"editor", "editing", "post", "color grade", "sound design",
				"screenwriter", "script", "short film", "feature", "documentary",
				"indie film", "creator", "content creator", "youtube creator",
				"video production", "film school", "cinematography", "crew",
				"shoot", "shooting", "on set", "pre-production", "post-production",
			},
			ForbiddenClaims: []string{
				"Claims about competitor inferiority",
				"Unverified statistics",
				"Absolute statements without evidence",
			},
			Heuristics: rank.DefaultHeuristics(),
		},
		{
			Name: "creative-tech",
			Keywords: []string{
				"ai", "artificial intelligence", "design", "creative tech", "innovation",
				"digital transformation", "design thinking", "ux", "ui", "product design",
				"creative", "technology", "automation", "workflow", "productivity",
				"tool", "saas", "platform", "software", "app", "digital",
				"strategy", "branding", "marketing", "business", "startup",
				"tech", "developer", "engineer", "cto", "product manager",
			},
			ForbiddenClaims: []string{
				"AI hype without substance",
				"Overpromises about technology",
				"Dismissive attitudes toward traditional methods",
			},
			Heuristics: rank.DefaultHeuristics(),
		},
		{
			Name: "general",
			ForbiddenClaims: []string{
				"Platform-biased recommendations",
				"Unverified growth promises",
				"Exclusionary statements",
				"Unsubstantiated trends",
			},
			Heuristics: rank.DefaultHeuristics(),
		},
	}
}
