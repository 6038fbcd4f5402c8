package pipeline

// normalizeTransaction runs every field of one extracted element through
// the coercer. The transaction type is resolved first because it selects
// the category allow-list (income vs expense).
func normalizeTransaction(obj map[string]interface{}, p Profile, n *Normalizer) TransactionRecord {
	txType := n.Member("transaction_type", obj["transaction_type"], p.TransactionTypes, DefaultTransactionType)

	return TransactionRecord{
		TransactionType: txType,
		Category:        n.Member("category", obj["category"], p.allowedCategories(txType), FallbackCategory),
		Amount:          n.Amount("amount", obj["amount"]),
		Date:            n.Date("date", obj["date"]),
		Description:     n.Text("description", obj["description"], DefaultDescription),
	}
}

// normalizeMetal runs one extracted element through the metal coercers.
func normalizeMetal(obj map[string]interface{}, p MetalProfile, n *Normalizer) MetalRecord {
	return MetalRecord{
		Brand:       n.Brand("brand", obj["brand"], p.Brands),
		WeightGrams: n.WeightGrams("weight_grams", obj["weight_grams"]),
		Amount:      n.Amount("amount", obj["amount"]),
		Quantity:    n.Quantity("quantity", obj["quantity"], 1),
		SavingsGoal: n.Member("savings_goal", obj["savings_goal"], p.SavingsGoals, DefaultSavingsGoal),
		Date:        n.Date("date", obj["date"]),
	}
}

// normalizeMetalFields maps a line-shaped reply (flat string mapping) onto
// a metal record. Absent keys coerce to their defaults like any other
// failed field.
func normalizeMetalFields(fields map[string]string, p MetalProfile, n *Normalizer) MetalRecord {
	obj := make(map[string]interface{}, len(fields))
	obj["brand"] = fields["Brand"]
	obj["weight_grams"] = fields["Weight"]
	obj["amount"] = fields["Amount"]
	obj["quantity"] = fields["Qty"]
	obj["savings_goal"] = fields["Savings Goal"]
	obj["date"] = fields["Date"]
	return normalizeMetal(obj, p, n)
}

// AssembleTransactions maps each extracted element through the normalizer
// preserving input order. Elements that are not structured objects are
// skipped with a warning; they never abort the batch. An empty input is a
// valid empty result.
func AssembleTransactions(items []interface{}, p Profile, n *Normalizer) []TransactionRecord {
	records := make([]TransactionRecord, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			n.log.Warn().Int("index", i).Interface("element", item).Msg("Skipping non-object transaction element")
			continue
		}
		records = append(records, normalizeTransaction(obj, p, n))
	}
	return records
}

// AssembleMetalRecords is the metal-domain counterpart of
// AssembleTransactions.
func AssembleMetalRecords(items []interface{}, p MetalProfile, n *Normalizer) []MetalRecord {
	records := make([]MetalRecord, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			n.log.Warn().Int("index", i).Interface("element", item).Msg("Skipping non-object transaction element")
			continue
		}
		records = append(records, normalizeMetal(obj, p, n))
	}
	return records
}
