package ai

import (
	"context"
	"errors"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Client interface {
	Chat(ctx context.Context, messages []Message) (string, []byte, error)
}

// ErrRateLimited сигнализирует об ограничении частоты запросов у провайдера.
// Сервис повторяет запрос с экспоненциальной задержкой, после чего агенты
// переходят на синтетические данные.
var ErrRateLimited = errors.New("ai provider rate limited")

func resolveMaxTokens(value int) int {
	if value > 0 {
		return value
	}

	return defaultMaxTokens
}
