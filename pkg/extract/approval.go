package extract

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Approver decides whether a projected spend goes ahead.
type Approver interface {
	Approve(est Estimate) (bool, error)
}

var (
	estimateTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	estimateCostStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
)

// ConsoleApprover prompts the operator on the terminal with the cost
// estimate before extraction starts.
type ConsoleApprover struct{}

func (ConsoleApprover) Approve(est Estimate) (bool, error) {
	qualifier := ""
	if est.Approximate {
		qualifier = " (approximate)"
	}
	description := fmt.Sprintf(
		"Model: %s\nChunks: %d\nInput tokens%s: %d\nEstimated output tokens: %d\n%s",
		est.Model,
		est.ChunkCount,
		qualifier,
		est.InputTokens,
		est.EstimatedOutputTokens,
		estimateCostStyle.Render(fmt.Sprintf("Estimated cost: $%.4f", est.EstimatedCostUSD)),
	)

	confirmed := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title(estimateTitleStyle.Render("LLM Extraction Estimate")).
				Description(description),
			huh.NewConfirm().
				Title("Proceed with extraction?").
				Affirmative("Yes, extract").
				Negative("No, cancel").
				Value(&confirmed),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}
