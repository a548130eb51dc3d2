package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"sync/atomic"
)

// ResponseCache — хранилище ответов оракула по хэшу запроса. Реализация
// сама отвечает за срок жизни записей.
type ResponseCache interface {
	Get(promptHash string) (string, bool)
	Put(promptHash, response string)
}

// CachedClient оборачивает клиент оракула кэшем: одинаковые строки в
// больших экспортах встречаются постоянно, и повторный вызов модели по
// тому же запросу — выброшенные деньги и квота.
type CachedClient struct {
	inner Client
	cache ResponseCache

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCachedClient создает кэширующую обертку над клиентом оракула.
func NewCachedClient(inner Client, cache ResponseCache) *CachedClient {
	return &CachedClient{inner: inner, cache: cache}
}

// Generate возвращает закэшированный ответ или вызывает внутренний клиент.
// Ошибки не кэшируются.
func (c *CachedClient) Generate(ctx context.Context, req Request) (string, error) {
	key := requestKey(req)
	if response, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		return response, nil
	}
	c.misses.Add(1)

	response, err := c.inner.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	c.cache.Put(key, response)
	return response, nil
}

// Stats возвращает счетчики попаданий и промахов и пишет их в лог.
func (c *CachedClient) Stats() (hits, misses int64) {
	hits, misses = c.hits.Load(), c.misses.Load()
	log.Printf("[CachedClient] Cache stats: %d hits, %d misses", hits, misses)
	return hits, misses
}

// requestKey — детерминированный ключ запроса: хэш инструкции, схемы,
// примеров и полезной нагрузки.
func requestKey(req Request) string {
	h := sha256.New()
	h.Write([]byte(req.SystemInstruction))
	h.Write([]byte{0})
	h.Write(req.Schema)
	h.Write([]byte{0})
	for _, ex := range req.Examples {
		h.Write([]byte(ex.Input))
		h.Write([]byte{0})
		h.Write([]byte(ex.Output))
		h.Write([]byte{0})
	}
	h.Write([]byte(req.UserPayload))
	return hex.EncodeToString(h.Sum(nil))
}
