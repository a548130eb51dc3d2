// Package algorithms содержит алгоритмы нечёткого сравнения строк,
// используемые справочником населённых пунктов.
package algorithms

import "math"

// LevenshteinDistance вычисляет расстояние Левенштейна с единичной
// стоимостью вставки, удаления и замены. Оптимизированная версия с одним
// массивом вместо полной матрицы.
func LevenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	len1 := len(r1)
	len2 := len(r2)

	if len1 == 0 {
		return len2
	}
	if len2 == 0 {
		return len1
	}

	column := make([]int, len1+1)
	for i := 1; i <= len1; i++ {
		column[i] = i
	}

	for x := 1; x <= len2; x++ {
		column[0] = x
		lastDiag := x - 1
		for y := 1; y <= len1; y++ {
			oldDiag := column[y]
			cost := 0
			if r1[y-1] != r2[x-1] {
				cost = 1
			}
			column[y] = min3(column[y]+1, column[y-1]+1, lastDiag+cost)
			lastDiag = oldDiag
		}
	}

	return column[len1]
}

// SimilarityScore вычисляет оценку схожести 0..100 на основе расстояния
// Левенштейна: round((1 - dist/maxLen) * 100). Две пустые строки считаются
// полностью совпадающими.
func SimilarityScore(s1, s2 string) int {
	len1 := len([]rune(s1))
	len2 := len([]rune(s2))
	maxLen := len1
	if len2 > maxLen {
		maxLen = len2
	}
	if maxLen == 0 {
		return 100
	}

	distance := LevenshteinDistance(s1, s2)
	return int(math.Round((1 - float64(distance)/float64(maxLen)) * 100))
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
