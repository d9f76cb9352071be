package storages

// ConsumeFIFO списывает amount с записей дохода в порядке их следования
// (ожидается сортировка от старых к новым). Возвращает только затронутые
// записи с уже уменьшенными суммами. Ничего не изменяет и возвращает
// ErrInsufficientEarnings, если суммарного дохода недостаточно.
// Нулевой amount — no-op.
func ConsumeFIFO(records []EarningsRecord, amount float64) ([]EarningsRecord, error) {
	if amount == 0 {
		return nil, nil
	}
	if amount < 0 {
		return nil, ErrValidation
	}

	var total float64
	for _, rec := range records {
		total += rec.Amount
	}
	if total < amount {
		return nil, ErrInsufficientEarnings
	}

	remaining := amount
	var touched []EarningsRecord
	for _, rec := range records {
		if remaining <= 0 {
			break
		}
		if rec.Amount <= 0 {
			continue
		}
		take := rec.Amount
		if take > remaining {
			take = remaining
		}
		rec.Amount -= take
		remaining -= take
		touched = append(touched, rec)
	}

	return touched, nil
}

// TotalEarnings возвращает сумму всех записей дохода
func TotalEarnings(records []EarningsRecord) float64 {
	var total float64
	for _, rec := range records {
		total += rec.Amount
	}
	return total
}
