package handler

import (
	"github.com/mountain-chan/security-chat-backend/internal/app/chat"
	"github.com/mountain-chan/security-chat-backend/internal/app/store"
	"github.com/mountain-chan/security-chat-backend/internal/configs"
)

type AppDeps struct {
	Hub      *chat.Hub
	Config   *configs.AppConfig
	Messages store.MessageStore
	Users    store.UserStore
}
