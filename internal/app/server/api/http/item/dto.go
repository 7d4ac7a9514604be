package item

import "clipsync/internal/domain/item"

// Обертки Huma над доменными DTO синхронизации

type pushInput struct {
	Body item.PushRequest
}

type pushOutput struct {
	Body item.PushResponse
}

type pullInput struct {
	Body item.PullRequest
}

type pullOutput struct {
	Body item.PullResponse
}

type deleteInput struct {
	Body item.DeleteRequest
}

type deleteOutput struct {
	Body item.DeleteResponse
}
