package types

import "fmt"

// Category represents the kind of sales assistance a member claims
type Category string

const (
	CategoryRecommendation Category = "recommendation"
	CategoryAssistance     Category = "assistance"
	CategoryConsultation   Category = "consultation"
	CategoryProblemSolving Category = "problem-solving"
)

// AllCategories returns all valid assistance categories
func AllCategories() []Category {
	return []Category{
		CategoryRecommendation,
		CategoryAssistance,
		CategoryConsultation,
		CategoryProblemSolving,
	}
}

// IsValid checks if the category is valid
func (c Category) IsValid() bool {
	switch c {
	case CategoryRecommendation,
		CategoryAssistance,
		CategoryConsultation,
		CategoryProblemSolving:
		return true
	default:
		return false
	}
}

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// ParseCategory parses a string into a Category
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid assistance category: %s", s)
	}
	return c, nil
}
