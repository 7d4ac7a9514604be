package status

import "clipsync/internal/domain/item"

type statusInput struct {
}

type statusOutput struct {
	Body item.StatusResponse
}
