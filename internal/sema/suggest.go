package sema

// nearestName подбирает похожее имя из кандидатов для подсказки "did you
// mean". Порог зависит от длины искомого имени, точные совпадения
// пропускаются.
func nearestName(want string, candidates []string) (string, bool) {
	if want == "" {
		return "", false
	}
	limit := max(len([]rune(want))/3, 1)
	best := ""
	bestDist := limit + 1
	for _, cand := range candidates {
		if cand == "" || cand == want {
			continue
		}
		d := editDistance(want, cand)
		if d < bestDist {
			best, bestDist = cand, d
		}
	}
	if bestDist > limit {
		return "", false
	}
	return best, true
}

// editDistance считает расстояние Левенштейна по рунам в две строки
// таблицы.
func editDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i, ca := range ra {
		cur[0] = i + 1
		for j, cb := range rb {
			cost := 1
			if ca == cb {
				cost = 0
			}
			cur[j+1] = min(prev[j]+cost, min(prev[j+1]+1, cur[j]+1))
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
