package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// DefaultLanguage is the narrative language used when none is configured.
const DefaultLanguage = "Thai"

// promptRecord is the compact projection of a transaction sent to the model.
type promptRecord struct {
	ID       int64   `json:"id"`
	Date     string  `json:"date"`
	Desc     string  `json:"desc"`
	Amount   float64 `json:"amount"`
	Cat      string  `json:"cat"`
	Platform string  `json:"platform"`
}

// PromptBuilder renders the analysis instruction prompt.
type PromptBuilder struct {
	// Language is the language the summary and advice must be written in.
	Language string
}

// NewPromptBuilder returns a builder for the given narrative language.
func NewPromptBuilder(language string) *PromptBuilder {
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}
	return &PromptBuilder{Language: language}
}

// Build renders the prompt for a batch of transactions. A non-blank
// instruction is appended as an extra directive line.
func (b *PromptBuilder) Build(txs []domain.Transaction, instruction string) (string, error) {
	data, err := encodeRecords(txs)
	if err != nil {
		return "", fmt.Errorf("Build: encoding transactions: %w", err)
	}

	lang := b.Language
	if lang == "" {
		lang = DefaultLanguage
	}

	var sb strings.Builder
	sb.WriteString("You are a Finance Expert AI. Analyze the following transaction data for the user.\n")
	sb.WriteString("Tasks:\n")
	fmt.Fprintf(&sb, "1. Summarize unusual spending patterns (anomalies) in %s.\n", lang)
	sb.WriteString("2. Find potential duplicate transactions. Criteria for duplicates:\n")
	sb.WriteString("   - MUST have the EXACT SAME amount.\n")
	sb.WriteString("   - MUST be on the EXACT SAME date (day/month/year).\n")
	sb.WriteString("   - Descriptions should be identical or very similar.\n")
	sb.WriteString("   For each duplicate group found, return a list containing objects with \"desc\", \"date\", and \"amount\" for each transaction in that group.\n")
	fmt.Fprintf(&sb, "3. Provide actionable advice in %s.\n", lang)
	if instruction = strings.TrimSpace(instruction); instruction != "" {
		fmt.Fprintf(&sb, "User specific request: %s\n", instruction)
	}
	sb.WriteString("\n")
	sb.WriteString("Return your response in JSON format with the following keys:\n")
	fmt.Fprintf(&sb, "- \"summary\": A brief text summary of the spending in %s.\n", lang)
	sb.WriteString("- \"anomalies\": List of transaction objects that look unusual.\n")
	sb.WriteString("- \"duplicates\": List of lists, where each sub-list contains objects with \"desc\", \"date\", and \"amount\" of transactions that are likely duplicates.\n")
	fmt.Fprintf(&sb, "- \"advice\": A string with financial advice in %s.\n", lang)
	sb.WriteString("\n")
	sb.WriteString("Transactions:\n")
	sb.Write(data)
	sb.WriteString("\n")

	return sb.String(), nil
}

// encodeRecords serializes the projection without escaping &, < and > so
// descriptions reach the model as written.
func encodeRecords(txs []domain.Transaction) ([]byte, error) {
	records := make([]promptRecord, 0, len(txs))
	for _, tx := range txs {
		records = append(records, promptRecord{
			ID:       tx.ID,
			Date:     tx.Date.String(),
			Desc:     tx.Description,
			Amount:   tx.Amount,
			Cat:      tx.Category,
			Platform: tx.Platform,
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
