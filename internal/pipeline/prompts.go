package pipeline

import (
	"fmt"
	"strings"
	"text/template"
)

// Prompt templates are versioned and parameterized: the template states the
// output contract, the enumerated vocabulary, the unit-conversion rules and
// the fallback defaults; the substitution data carries only the per-request
// values. Changing a prompt means changing a template, not handler code.

var promptFuncs = template.FuncMap{
	"join": strings.Join,
}

var financeTextPromptTmpl = template.Must(template.New("finance-text").Funcs(promptFuncs).Parse(`From the following text: "{{.Input}}"
Determine:
1. Category (pick from, for income: {{join .IncomeCategories ", "}}; for expenses: {{join .ExpenseCategories ", "}})
2. Transaction type (pick from: {{join .TransactionTypes ", "}})
3. Amount. Expand the units "k", "rb", "ribu", "thousand" to x1000; "jt", "juta", "million" to x1000000; "m", "milyar", "billion" to x1000000000. Give the expanded value as a plain decimal number with no currency symbol or unit. If absent or invalid, use 0.
4. Description (the specific goods or service)
5. Date in YYYY-MM-DD format. Resolve relative dates against today ({{.Today}}).

Answer in JSON, exactly this shape:
` + "```json" + `
{
    "category": "[category]",
    "transaction_type": "[transaction_type]",
    "amount": [amount],
    "date": "[date]",
    "description": "[description]"
}
` + "```" + `
If the information is unclear, use these defaults:
- category: "` + FallbackCategory + `"
- transaction_type: "` + DefaultTransactionType + `"
- amount: 0
- description: "` + DefaultDescription + `"
- date: "{{.Today}}"`))

var financeImagePromptTmpl = template.Must(template.New("finance-image").Funcs(promptFuncs).Parse(`Analyze this image (for example a shopping receipt) and identify every transaction separately. For each item determine:
1. Category (pick from: {{join .ExpenseCategories ", "}})
2. Transaction type (pick from: {{join .TransactionTypes ", "}})
3. Amount (the exact amount written for the item, without thousands separators, currency symbols or rounding)
4. Description (the specific goods or service as written), or derive it from the caption "{{.Caption}}" if present

Detailed rules:
  - If there is a discount, make its amount negative
  - If a total is present, ignore the per-item amounts
  - If tax is present, fold the tax into the item amount
  - If the description is unclear, use "` + DefaultDescription + `"
  - If the caption "{{.Caption}}" names a category, prefer the caption when assigning categories

Return the result as valid JSON:
` + "```json" + `
{
  "transactions": [
    {
      "category": "[category]",
      "transaction_type": "[transaction_type]",
      "amount": [amount],
      "date": "[date in YYYY-MM-DD, today is {{.Today}}]",
      "description": "[description]"
    }
  ]
}
` + "```" + `
If no transactions are detected, return an empty array: {"transactions": []}.
Make sure the response is valid JSON with no extra text outside the JSON.`))

var metalTextPromptTmpl = template.Must(template.New("metal-text").Funcs(promptFuncs).Parse(`Analyze the following text for a precious-metal purchase: "{{.Input}}"

The input is expected to follow the pattern: [Brand] [Weight]g [Amount] [Qty] [Savings goal], possibly with extra details such as a purchase date.
Example: Antam 5g 5000k 1 Emergency Fund
Example with a date: Antam 10g Emergency Fund purchased 11 January 2010

Detailed rules:
- If the key information (brand, weight) is unclear, reply with only: Error: [specific error message].
- Identify "Brand" from this list: {{join .Brands ", "}}. If it is not in the list or unclear, use "` + FallbackBrand + `". If the text starts with "emas ", ignore the "emas " prefix.
- Extract "Weight". Convert all mass units to grams, e.g. "1kg" becomes 1000 and "5gr" becomes 5. Give only the number. If absent or unclear, use 0.0.
- Extract "Amount" (optional). Expand "k", "rb", "ribu" to x1000; "jt", "juta" to x1000000; "m", "milyar" to x1000000000. Give the expanded value as a plain decimal number without currency symbols or units. If absent or invalid, use 0.
- Extract "Qty" as a whole number. If absent or unclear, use 1.
- Identify "Savings Goal" from this list: {{join .SavingsGoals ", "}}. Use context if it is not explicit. If not applicable or unclear, use "` + DefaultSavingsGoal + `".
- Extract "Date". Look for date information in the text and convert it to YYYY-MM-DD. If the text has no date, use today ({{.Today}}).

Give your answer in exactly this text format:
Brand: [brand]
Weight: [weight_in_grams_as_number]
Amount: [amount_as_full_number]
Qty: [qty_as_whole_number]
Savings Goal: [savings_goal]
Date: [date_in_YYYY-MM-DD]

Make sure Weight, Amount and Qty are plain numbers with no extra text. If Amount is missing, set it to 0 and keep parsing the rest.`))

var metalImagePromptTmpl = template.Must(template.New("metal-image").Funcs(promptFuncs).Parse(`Analyze this image (for example a precious-metal purchase receipt) and extract the details of every separate transaction.
Use the following caption to determine the savings goal when the image is unclear: "{{.Caption}}"

Present every detected transaction as valid JSON: a single object with a "transactions" key holding an array of transaction objects.
Each object in "transactions" must have the keys: "brand" (string), "weight_grams" (number), "amount" (number), "quantity" (integer), "savings_goal" (string), "date" (string, YYYY-MM-DD, today is {{.Today}}).

Detailed rules:
  - Identify "brand" from this list: {{join .Brands ", "}}. If it is not in the list or unclear, use "` + FallbackBrand + `". If it starts with "emas ", ignore the "emas " prefix.
  - Identify "savings_goal" from this list: {{join .SavingsGoals ", "}}. If not applicable, use "` + DefaultSavingsGoal + `".

If no transactions are detected in the image, return JSON with an empty array: {"transactions": []}

Make sure your response is ONLY valid JSON, with no explanatory text or markdown formatting (such as ` + "```json" + `) outside the JSON block itself.`))

var voicePromptTmpl = template.Must(template.New("voice").Parse(`Listen to the attached voice note and summarize every financial transaction it mentions in one short paragraph of plain text: what was bought or received, the amounts, and when (today is {{.Today}}).
Reply with only the summary, no markdown and no JSON. If the recording mentions no financial transaction, say so.`))

type financePromptData struct {
	Profile
	Input   string
	Caption string
	Today   string
}

type metalPromptData struct {
	MetalProfile
	Input   string
	Caption string
	Today   string
}

func renderPrompt(tmpl *template.Template, data interface{}) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render prompt %q: %w", tmpl.Name(), err)
	}
	return b.String(), nil
}
