package core

import "time"

type TelegramConfig interface {
	GetTelegramToken() string
	GetTelegramOwnerID() int64
}

type ChatConfig interface {
	GetContextItems() int
	GetHistoryTurns() int
	GetPromptTokenBudget() int
	GetLocation() *time.Location
}
