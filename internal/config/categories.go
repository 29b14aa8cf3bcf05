package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/screenshot-organizer/internal/core/domain"
)

// DefaultCategories returns the built-in category set with its keyword
// patterns, in declaration order. Declaration order matters: the classifier
// resolves score ties in favor of the earliest category.
func DefaultCategories() []domain.Category {
	return []domain.Category{
		{
			Name:        "code",
			Description: "Code snippets, terminal output, IDE screenshots, programming content",
			Keywords: []string{
				`\bdef\s+\w+`,
				`\bclass\s+\w+`,
				`\bfunction\s+\w+`,
				`\bimport\s+`,
				`\bfrom\s+\w+\s+import`,
				`\bconst\s+\w+\s*=`,
				`\blet\s+\w+\s*=`,
				`\bvar\s+\w+\s*=`,
				`\bpublic\s+class`,
				`\bprivate\s+\w+`,
				`<\?php`,
				`#include\s+<`,
				`\breturn\s+\w+`,
				`\bif\s*\(`,
				`\bfor\s*\(`,
				`\bwhile\s*\(`,
			},
		},
		{
			Name:        "errors",
			Description: "Error messages, stack traces, warnings, exceptions",
			Keywords: []string{
				`\berror\b`,
				`\bexception\b`,
				`\bfailed\b`,
				`\bwarning\b`,
				`\btraceback\b`,
				`\bstack trace\b`,
				`\bsyntaxerror\b`,
				`\bnameerror\b`,
				`\btypeerror\b`,
				`\bvalueerror\b`,
				`\bcritical\b`,
				`\bfatal\b`,
				`\bpanic\b`,
				`\bsegmentation fault\b`,
				`\bnullpointerexception\b`,
				`\bundefined\s+reference`,
			},
		},
		{
			Name:        "documentation",
			Description: "Documentation pages, technical specs, API references",
			Keywords: []string{
				`\bapi\s+reference\b`,
				`\bdocumentation\b`,
				`\btutorial\b`,
				`\bguide\b`,
				`\bhow\s+to\b`,
				`\breadme\b`,
				`\bchangelog\b`,
				`\brelease\s+notes\b`,
				`\binstallation\b`,
				`\bquickstart\b`,
				`\bexample\b`,
				`\busage\b`,
				`\bgetting\s+started\b`,
			},
		},
		{
			Name:        "design",
			Description: "UI mockups, design files, graphics, visual assets",
			Keywords: []string{
				`\bmockup\b`,
				`\bwireframe\b`,
				`\bprototype\b`,
				`\bui\s+design\b`,
				`\bux\s+design\b`,
				`\bfigma\b`,
				`\bsketch\b`,
				`\bdesign\s+system\b`,
				`\bcolor\s+palette\b`,
				`\btypography\b`,
				`\blayout\b`,
			},
		},
		{
			Name:        "communication",
			Description: "Messages, emails, chat conversations, social media",
			Keywords: []string{
				`\bslack\b`,
				`\bdiscord\b`,
				`\bteams\b`,
				`\bemail\b`,
				`\bmessage\b`,
				`\bchat\b`,
				`\bconversation\b`,
				`\bmeeting\b`,
				`\bnotification\b`,
				`\bdm\b`,
				`\breply\b`,
				`\bcomment\b`,
			},
		},
		{
			Name:        "memes",
			Description: "Memes, jokes, funny images",
			Keywords: []string{
				`\bmeme\b`,
				`\blol\b`,
				`\blmao\b`,
				`\brofl\b`,
				`\bhaha\b`,
				`\bfunny\b`,
				`\bjoke\b`,
				`\bsarcasm\b`,
				`😂`,
				`🤣`,
				`💀`,
			},
		},
		{
			Name:        "other",
			Description: "Miscellaneous screenshots that don't fit other categories",
		},
	}
}

type categoriesFile struct {
	Categories []domain.Category `yaml:"categories"`
}

// LoadCategories builds the category set from a YAML file, or the built-in
// defaults when path is empty.
func LoadCategories(path string) (*domain.CategorySet, error) {
	if path == "" {
		return domain.NewCategorySet(DefaultCategories()), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories file: %w", err)
	}

	var parsed categoriesFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse categories file %s: %w", path, err)
	}
	if len(parsed.Categories) == 0 {
		return nil, fmt.Errorf("categories file %s defines no categories", path)
	}
	return domain.NewCategorySet(parsed.Categories), nil
}
