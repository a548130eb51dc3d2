// Package ai содержит клиент внешнего оракула (Gemini) со структурированным
// выводом по JSON-схеме, few-shot примерами и кэшированием ответов.
package ai

import (
	"context"
	"encoding/json"
	"strings"
)

// ExamplePair — пара few-shot примера: запрос и эталонный ответ.
type ExamplePair struct {
	Input  string
	Output string
}

// Request — один запрос к оракулу. Schema ограничивает форму ответа на
// стороне модели, Examples подаются перед полезной нагрузкой как история
// диалога.
type Request struct {
	SystemInstruction string
	Schema            json.RawMessage
	Examples          []ExamplePair
	UserPayload       string
}

// Client — абстракция оракула. Возвращает сырой текст ответа; разбор и
// валидация — на вызывающей стороне.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// StripJSONFence снимает markdown-ограждение с ответа модели: некоторые
// модели заворачивают JSON в ```json ... ``` даже при структурированном
// выводе.
func StripJSONFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
