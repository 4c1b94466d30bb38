package service

import "github.com/jeovahfialho/sssm/internal/domain"

// DefaultCatalogue returns the sample stocks the application starts with.
func DefaultCatalogue() []*domain.Stock {
	return []*domain.Stock{
		domain.NewCommonStock("TEA", 0, 100),
		domain.NewCommonStock("POP", 8, 100),
		domain.NewCommonStock("ALE", 23, 60),
		domain.NewPreferredStock("GIN", 8, 0.02, 100),
		domain.NewCommonStock("JOE", 13, 250),
	}
}
