package cli

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"

	"github.com/irwinb/tradecouncil/internal/models"
)

var subjectPattern = regexp.MustCompile(`^[A-Z0-9.-]+$`)

// PromptForSubject asks for the ticker symbol to analyze.
func PromptForSubject() (string, error) {
	var subject string
	prompt := &survey.Input{
		Message: "Enter the ticker symbol (e.g., AAPL, MSFT, GOOGL):",
		Help:    "The subject to analyze",
	}

	err := survey.AskOne(prompt, &subject, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(strings.ToUpper(val.(string)))
		if len(str) == 0 {
			return fmt.Errorf("ticker symbol cannot be empty")
		}
		if len(str) > 10 {
			return fmt.Errorf("ticker symbol too long (max 10 characters)")
		}
		if !subjectPattern.MatchString(str) {
			return fmt.Errorf("invalid ticker format (use letters, numbers, dots, and hyphens only)")
		}
		return nil
	}))
	return strings.TrimSpace(strings.ToUpper(subject)), err
}

// PromptForDate asks for the as-of date, defaulting to today.
func PromptForDate() (string, error) {
	var dateStr string
	prompt := &survey.Input{
		Message: "Enter the analysis date (YYYY-MM-DD) or press Enter for today:",
		Default: time.Now().Format("2006-01-02"),
	}

	err := survey.AskOne(prompt, &dateStr, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(val.(string))
		if str == "" {
			return nil
		}
		if _, err := time.Parse("2006-01-02", str); err != nil {
			return fmt.Errorf("invalid date format, use YYYY-MM-DD")
		}
		return nil
	}))
	if strings.TrimSpace(dateStr) == "" {
		dateStr = time.Now().Format("2006-01-02")
	}
	return strings.TrimSpace(dateStr), err
}

// PromptForAnalysts asks which analysts to run.
func PromptForAnalysts(defaults []string) ([]string, error) {
	options := make([]string, 0, len(models.AllAnalysts()))
	for _, kind := range models.AllAnalysts() {
		options = append(options, string(kind))
	}

	var selected []string
	prompt := &survey.MultiSelect{
		Message: "Select the analysts to run:",
		Options: options,
		Default: defaults,
	}

	err := survey.AskOne(prompt, &selected, survey.WithValidator(func(val interface{}) error {
		if answers, ok := val.([]survey.OptionAnswer); ok && len(answers) == 0 {
			return fmt.Errorf("select at least one analyst")
		}
		return nil
	}))
	return selected, err
}

// PromptForRounds asks for the two debate round limits.
func PromptForRounds(defaultDebate, defaultRisk int) (int, int, error) {
	debate, err := promptForCount("Research debate rounds:", defaultDebate)
	if err != nil {
		return 0, 0, err
	}
	risk, err := promptForCount("Risk debate rounds:", defaultRisk)
	if err != nil {
		return 0, 0, err
	}
	return debate, risk, nil
}

func promptForCount(message string, def int) (int, error) {
	var answer string
	prompt := &survey.Input{
		Message: message,
		Default: fmt.Sprintf("%d", def),
	}

	err := survey.AskOne(prompt, &answer, survey.WithValidator(func(val interface{}) error {
		var n int
		if _, err := fmt.Sscanf(strings.TrimSpace(val.(string)), "%d", &n); err != nil || n < 0 {
			return fmt.Errorf("enter a number >= 0")
		}
		return nil
	}))
	if err != nil {
		return 0, err
	}

	var n int
	fmt.Sscanf(strings.TrimSpace(answer), "%d", &n)
	return n, nil
}
