package device

import "clipsync/internal/domain/device"

type registerInput struct {
	Body device.RegisterRequest
}

type registerOutput struct {
	Body device.RegisterResponse
}
