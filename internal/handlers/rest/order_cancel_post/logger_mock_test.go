package order_cancel_post_test

import "dispatch/pkg/logger"

// loggerMock lets MockhandlerLogger be returned from With: handlerLogger has no
// Debug method, so the generated mock alone does not satisfy logger.Logger.
type loggerMock struct{ *MockhandlerLogger }

func (loggerMock) Debug(string, ...logger.Field) {}
