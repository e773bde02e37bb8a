package handler

import (
	"wavechat/internal/configs"
	"wavechat/internal/relay"
	"wavechat/internal/storage"
)

// AppDeps bundles the collaborators the HTTP handlers need.
type AppDeps struct {
	Hub            *relay.Hub
	Config         *configs.AppConfig
	StorageService storage.StorageService
}
