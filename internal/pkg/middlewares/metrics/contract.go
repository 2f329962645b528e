package metrics

import "dispatch/pkg/logger"

type handlerLogger interface {
	Debug(msg string, fields ...logger.Field)
	Info(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
}
